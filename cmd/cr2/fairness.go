package main

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/protocol"
)

var (
	flagFairnessParticipants int
	flagFairnessRuns         int
)

var fairnessCmd = &cobra.Command{
	Use:   "fairness",
	Short: "analyze reveal-position distribution over repeated independent runs",
	Long: "fairness repeats the commit round with fresh random secrets and " +
		"reports, per participant, the distribution of its reveal position. " +
		"With a fair ordering no participant is pinned to one position: the " +
		"mean position approaches (n-1)/2 for every participant.",
	Run: runFairness,
}

func init() {
	fairnessCmd.Flags().IntVarP(&flagFairnessParticipants, "participants", "n", 5, "number of participants")
	fairnessCmd.Flags().IntVarP(&flagFairnessRuns, "runs", "r", 1000, "number of independent runs")
}

func runFairness(*cobra.Command, []string) {
	log := mainLogger()

	// identities are fixed across runs, only the secrets are fresh, so the
	// analysis isolates the commitment contribution to the ordering
	participants, err := newParticipants(flagFairnessParticipants)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create participants")
	}
	addresses := make([]beacon.Address, 0, len(participants))
	for _, p := range participants {
		addresses = append(addresses, p.Address())
	}

	positions := make([][]float64, len(participants))
	for run := 0; run < flagFairnessRuns; run++ {
		cvs := make(map[beacon.Address]crypto.Hash, len(participants))
		for _, address := range addresses {
			chain, err := crypto.GenerateCommitmentChain()
			if err != nil {
				log.Fatal().Err(err).Msg("could not generate commitment chain")
			}
			cvs[address] = chain.Cv
		}
		order, err := protocol.ComputeRevealOrder(addresses, cvs)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute reveal order")
		}
		for position, address := range order {
			for i, a := range addresses {
				if a == address {
					positions[i] = append(positions[i], float64(position))
				}
			}
		}
	}

	fmt.Printf("participant        runs  mean   stddev  min  max\n")
	for i, address := range addresses {
		mean, _ := stats.Mean(positions[i])
		stddev, _ := stats.StandardDeviation(positions[i])
		min, _ := stats.Min(positions[i])
		max, _ := stats.Max(positions[i])
		fmt.Printf("%s  %5d  %.3f  %.3f   %.0f   %.0f\n",
			address.Short(), len(positions[i]), mean, stddev, min, max)
	}
	log.Info().
		Int("participants", flagFairnessParticipants).
		Int("runs", flagFairnessRuns).
		Msg("fairness analysis complete")
}

package main

import (
	"github.com/gammazero/workerpool"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"

	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/participant"
	"github.com/crlabs/commit-reveal2/protocol"
)

var (
	flagDirectParticipants int
	flagDirectWorkers      int
)

var directCmd = &cobra.Command{
	Use:   "direct",
	Short: "run one direct-topology protocol round",
	Run:   runDirect,
}

func init() {
	directCmd.Flags().IntVarP(&flagDirectParticipants, "participants", "n", 5, "number of participants")
	directCmd.Flags().IntVar(&flagDirectWorkers, "workers", 4, "number of concurrent submitters")
}

func runDirect(*cobra.Command, []string) {
	log := mainLogger()

	participants, err := newParticipants(flagDirectParticipants)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create participants")
	}

	addresses := make([]beacon.Address, 0, len(participants))
	for _, p := range participants {
		addresses = append(addresses, p.Address())
	}
	machine := protocol.NewStateMachine(log, addresses, nil)

	// the commit and first reveal rounds are order-free, so the submissions
	// are driven concurrently; each one is serialized inside the engine
	accepted := atomic.NewUint64(0)
	rejected := atomic.NewUint64(0)
	submitRound := func(submit func(p *participant.Participant) error) {
		wp := workerpool.New(flagDirectWorkers)
		for _, p := range participants {
			p := p
			wp.Submit(func() {
				if err := submit(p); err != nil {
					rejected.Inc()
					return
				}
				accepted.Inc()
			})
		}
		wp.StopWait()
	}

	submitRound(func(p *participant.Participant) error {
		return machine.SubmitCv(p.Address(), p.Cv())
	})
	log.Info().Str("phase", machine.Phase().String()).Msg("commit round complete")

	submitRound(func(p *participant.Participant) error {
		return machine.SubmitCo(p.Address(), p.Co())
	})
	log.Info().Str("phase", machine.Phase().String()).Msg("first reveal round complete")

	// the final reveal round is strictly sequential in reveal order
	order, err := machine.RevealOrder()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read reveal order")
	}
	byAddress := make(map[beacon.Address]*participant.Participant, len(participants))
	for _, p := range participants {
		byAddress[p.Address()] = p
	}
	for _, address := range order {
		p := byAddress[address]
		if err := machine.SubmitS(p.Address(), p.Secret()); err != nil {
			log.Fatal().Err(err).Msg("in-order secret submission rejected")
		}
		accepted.Inc()
	}

	randomness, err := machine.FinalRandomness()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read final randomness")
	}
	log.Info().
		Uint64("accepted", accepted.Load()).
		Uint64("rejected", rejected.Load()).
		Str("randomness", randomness.Hex()).
		Msg("direct run complete")
}

func newParticipants(n int) ([]*participant.Participant, error) {
	participants := make([]*participant.Participant, 0, n)
	for i := 0; i < n; i++ {
		p, err := participant.New()
		if err != nil {
			return nil, err
		}
		if err := p.GenerateCommitments(); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/participant"
	"github.com/crlabs/commit-reveal2/protocol/hybrid"
)

var (
	flagHybridParticipants int
	flagHybridOutput       string
)

var hybridCmd = &cobra.Command{
	Use:   "hybrid",
	Short: "run one hybrid-topology protocol round through a leader and contract",
	Run:   runHybrid,
}

func init() {
	hybridCmd.Flags().IntVarP(&flagHybridParticipants, "participants", "n", 5, "number of participants")
	hybridCmd.Flags().StringVarP(&flagHybridOutput, "output", "o", "", "write the CBOR run record to this file")
}

func runHybrid(*cobra.Command, []string) {
	log := mainLogger()

	participants, err := newParticipants(flagHybridParticipants)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create participants")
	}

	leaderKeys, err := crypto.GenerateKeyPair()
	if err != nil {
		log.Fatal().Err(err).Msg("could not create leader keypair")
	}
	leader := hybrid.NewLeader(log, leaderKeys, nil)
	contract := hybrid.NewContract(log, leader.Address(), nil)

	for _, p := range participants {
		identity := p.Identity()
		if err := leader.AddParticipant(identity.Address, identity.PublicKey); err != nil {
			log.Fatal().Err(err).Msg("leader registration failed")
		}
		if err := contract.AddParticipant(identity.Address, identity.PublicKey); err != nil {
			log.Fatal().Err(err).Msg("contract registration failed")
		}
	}

	// off-chain collection: signed cv, then co, then secrets in reveal order
	for _, p := range participants {
		sig, err := p.SignCv()
		if err != nil {
			log.Fatal().Err(err).Msg("could not sign cv")
		}
		if err := leader.ReceiveCv(p.Address(), p.Cv(), sig); err != nil {
			log.Fatal().Err(err).Msg("cv submission rejected")
		}
	}

	root, err := leader.Root()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read merkle root")
	}
	if err := contract.SubmitRoot(leader.Address(), root); err != nil {
		log.Fatal().Err(err).Msg("root submission rejected")
	}

	for _, p := range participants {
		if err := leader.ReceiveCo(p.Address(), p.Co()); err != nil {
			log.Fatal().Err(err).Msg("co submission rejected")
		}
	}

	order, err := leader.RevealOrder()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read reveal order")
	}
	byAddress := make(map[beacon.Address]*participant.Participant, len(participants))
	for _, p := range participants {
		byAddress[p.Address()] = p
	}
	for _, address := range order {
		p := byAddress[address]
		if err := leader.ReceiveS(p.Address(), p.Secret()); err != nil {
			log.Fatal().Err(err).Msg("in-order secret submission rejected")
		}
	}

	// every participant can audit its inclusion under the published root
	for _, p := range participants {
		proof, err := leader.Proof(p.Address())
		if err != nil {
			log.Fatal().Err(err).Msg("could not generate inclusion proof")
		}
		if !proof.Verify(root) {
			log.Fatal().Str("participant", p.Address().Short()).Msg("inclusion proof does not verify")
		}
	}

	secrets, signatures, err := leader.FinalSubmission()
	if err != nil {
		log.Fatal().Err(err).Msg("could not assemble final submission")
	}
	if err := contract.Finalize(leader.Address(), secrets, signatures); err != nil {
		log.Fatal().Err(err).Msg("finalization rejected")
	}

	randomness, err := contract.FinalRandomness()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read final randomness")
	}
	log.Info().
		Str("root", root.Hex()).
		Str("randomness", randomness.Hex()).
		Msg("hybrid run complete")

	if flagHybridOutput == "" {
		return
	}
	record, err := contract.Record()
	if err != nil {
		log.Fatal().Err(err).Msg("could not export run record")
	}
	data, err := record.Encode()
	if err != nil {
		log.Fatal().Err(err).Msg("could not encode run record")
	}
	if err := os.WriteFile(flagHybridOutput, data, 0644); err != nil {
		log.Fatal().Err(err).Msg("could not write run record")
	}
	log.Info().Str("path", flagHybridOutput).Msg("run record written")
}

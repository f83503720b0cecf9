// Package participant implements the participant-side collaborator of the
// protocol: key ownership, commitment chain generation and commitment
// signing. The engine never sees a participant's secret before the final
// reveal round; it only consumes the address and public key at registration
// and the chain values as they are disclosed.
package participant

import (
	"fmt"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
)

// Participant owns a keypair and, per run, one commitment chain.
type Participant struct {
	keys  *crypto.KeyPair
	chain *crypto.CommitmentChain
}

// New creates a participant with a fresh keypair. No commitment chain exists
// until GenerateCommitments is called.
func New() (*Participant, error) {
	keys, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("could not create participant: %w", err)
	}
	return &Participant{keys: keys}, nil
}

// Address returns the participant's address.
func (p *Participant) Address() beacon.Address {
	return p.keys.Address()
}

// Identity returns the registration identity.
func (p *Participant) Identity() *beacon.Identity {
	return p.keys.Identity()
}

// GenerateCommitments samples a fresh secret and derives the commitment
// chain for this run. Calling it again discards the previous chain, so it
// must only be called between runs.
func (p *Participant) GenerateCommitments() error {
	chain, err := crypto.GenerateCommitmentChain()
	if err != nil {
		return fmt.Errorf("could not generate commitment chain: %w", err)
	}
	p.chain = chain
	return nil
}

// Cv returns the outer commitment to lock in the commit round.
func (p *Participant) Cv() crypto.Hash {
	return p.chain.Cv
}

// Co returns the intermediate commitment for the first reveal round.
func (p *Participant) Co() crypto.Hash {
	return p.chain.Co
}

// Secret returns the secret for the final reveal round.
func (p *Participant) Secret() crypto.Secret {
	return p.chain.S
}

// SignCv signs the current cv commitment for submission to the leader.
func (p *Participant) SignCv() ([]byte, error) {
	return p.keys.SignCommitment(p.chain.Cv)
}

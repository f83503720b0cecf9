package protocol

import (
	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
)

// Consumer consumes notifications about protocol state transitions and
// accept/reject decisions. Implementations must be non-blocking and
// concurrency safe; they are invoked synchronously after each decision,
// while the engine lock is held.
type Consumer interface {

	// OnSubmissionAccepted is called after a submission was accepted and
	// stored. The phase is the phase the submission was accepted in.
	OnSubmissionAccepted(sender beacon.Address, phase string)

	// OnSubmissionRejected is called after a submission was rejected. The
	// engine state is unchanged when this fires.
	OnSubmissionRejected(sender beacon.Address, phase string, err error)

	// OnPhaseTransition is called after the engine advanced from one phase
	// to the next.
	OnPhaseTransition(from string, to string)

	// OnRandomnessFinalized is called exactly once per run, when the final
	// randomness has been computed.
	OnRandomnessFinalized(randomness crypto.Hash)
}

// NoopConsumer is a no-op implementation of Consumer, used when the operator
// does not care about observability.
type NoopConsumer struct{}

var _ Consumer = (*NoopConsumer)(nil)

func NewNoopConsumer() *NoopConsumer {
	return &NoopConsumer{}
}

func (nc *NoopConsumer) OnSubmissionAccepted(beacon.Address, string)        {}
func (nc *NoopConsumer) OnSubmissionRejected(beacon.Address, string, error) {}
func (nc *NoopConsumer) OnPhaseTransition(string, string)                   {}
func (nc *NoopConsumer) OnRandomnessFinalized(crypto.Hash)                  {}

package protocol

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
)

// StateMachine is the authoritative phase machine of the direct topology:
// every commitment is submitted straight to it, and it alone owns the
// commitment store and the phase for a run.
//
// Phases advance automatically: COMMIT -> REVEAL1 once every participant has
// a locked cv, REVEAL1 -> REVEAL2 once every co has verified (at which point
// the reveal order is fixed), REVEAL2 -> DONE once every secret has been
// revealed in order.
//
// All operations are serialized under one exclusive lock, so each submission
// is an atomic check+write+advance. An operation either succeeds immediately
// or is rejected immediately with a definite reason; nothing blocks waiting
// on another participant. A participant that never submits stalls the run in
// its current phase, which is the expected manifestation of the
// last-revealer attack; recovery is an explicit Reset by the operator.
type StateMachine struct {
	log      zerolog.Logger
	consumer Consumer

	mu           sync.Mutex
	participants []beacon.Address
	phase        beacon.Phase

	// per-run commitment store, each mapping populated monotonically with
	// one entry per address per phase
	cvs     map[beacon.Address]crypto.Hash
	cos     map[beacon.Address]crypto.Hash
	secrets map[beacon.Address]crypto.Secret

	revealOrder []beacon.Address
	randomness  crypto.Hash
}

// NewStateMachine creates a state machine for one protocol run among the
// given participants. A nil consumer disables notifications.
func NewStateMachine(log zerolog.Logger, participants []beacon.Address, consumer Consumer) *StateMachine {
	if consumer == nil {
		consumer = NewNoopConsumer()
	}
	sm := &StateMachine{
		log: log.With().
			Str("component", "beacon_state_machine").
			Int("participants", len(participants)).
			Logger(),
		consumer:     consumer,
		participants: append([]beacon.Address(nil), participants...),
	}
	sm.resetLocked()
	return sm
}

// SubmitCv submits the initial cv commitment during the COMMIT phase. When
// the last participant's cv is accepted, the run advances to REVEAL1. The
// aggregate over the commitments is deliberately not computed yet; it only
// exists once the reveal order is derived.
//
// Error returns:
//   - PhaseViolationError if the run is not in the COMMIT phase
//   - UnknownParticipantError if the sender is not registered
//   - DuplicateSubmissionError if the sender already locked a cv
func (sm *StateMachine) SubmitCv(sender beacon.Address, cv crypto.Hash) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.phase != beacon.PhaseCommit {
		return sm.reject(sender, NewPhaseViolationErrorf(
			"cv submission requires phase %s, run is in %s", beacon.PhaseCommit, sm.phase))
	}
	if err := sm.checkRegistered(sender); err != nil {
		return sm.reject(sender, err)
	}
	if _, exists := sm.cvs[sender]; exists {
		return sm.reject(sender, NewDuplicateSubmissionErrorf(
			"participant %v already submitted cv", sender))
	}

	sm.cvs[sender] = cv
	sm.accept(sender)

	if len(sm.cvs) == len(sm.participants) {
		sm.advance(beacon.PhaseReveal1)
	}
	return nil
}

// SubmitCo reveals the intermediate commitment co during the REVEAL1 phase.
// The value must hash to the sender's locked cv. When the last co is
// accepted, the reveal order is fixed and the run advances to REVEAL2.
//
// Error returns:
//   - PhaseViolationError if the run is not in the REVEAL1 phase
//   - UnknownParticipantError if the sender is not registered
//   - DuplicateSubmissionError if the sender already revealed co
//   - HashChainMismatchError if H(co) != cv
func (sm *StateMachine) SubmitCo(sender beacon.Address, co crypto.Hash) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.phase != beacon.PhaseReveal1 {
		return sm.reject(sender, NewPhaseViolationErrorf(
			"co submission requires phase %s, run is in %s", beacon.PhaseReveal1, sm.phase))
	}
	if err := sm.checkRegistered(sender); err != nil {
		return sm.reject(sender, err)
	}
	if _, exists := sm.cos[sender]; exists {
		return sm.reject(sender, NewDuplicateSubmissionErrorf(
			"participant %v already submitted co", sender))
	}
	if !crypto.VerifyCo(co, sm.cvs[sender]) {
		return sm.reject(sender, NewHashChainMismatchErrorf(
			"co from %v does not hash to locked cv", sender))
	}

	sm.cos[sender] = co
	sm.accept(sender)

	if len(sm.cos) == len(sm.participants) {
		order, err := ComputeRevealOrder(sm.participants, sm.cvs)
		if err != nil {
			// all commitments are locked at this point, so this is a
			// programming error, not a protocol rejection
			sm.log.Fatal().Err(err).Msg("could not compute reveal order")
		}
		sm.revealOrder = order
		sm.log.Info().
			Str("first_revealer", order[0].Short()).
			Msg("reveal order fixed")
		sm.advance(beacon.PhaseReveal2)
	}
	return nil
}

// SubmitS reveals the secret during the REVEAL2 phase. The secret must hash
// to the sender's revealed co, and the sender must be the next unfulfilled
// entry in the reveal order. When the last secret is accepted, the final
// randomness is computed over the secrets in reveal order and the run
// advances to DONE.
//
// Error returns:
//   - PhaseViolationError if the run is not in the REVEAL2 phase
//   - UnknownParticipantError if the sender is not registered
//   - DuplicateSubmissionError if the sender already revealed its secret
//   - HashChainMismatchError if H(s) != co
//   - RevealOrderViolationError if the sender is not the next revealer
func (sm *StateMachine) SubmitS(sender beacon.Address, s crypto.Secret) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.phase != beacon.PhaseReveal2 {
		return sm.reject(sender, NewPhaseViolationErrorf(
			"secret submission requires phase %s, run is in %s", beacon.PhaseReveal2, sm.phase))
	}
	if err := sm.checkRegistered(sender); err != nil {
		return sm.reject(sender, err)
	}
	if _, exists := sm.secrets[sender]; exists {
		return sm.reject(sender, NewDuplicateSubmissionErrorf(
			"participant %v already revealed secret", sender))
	}
	if !crypto.VerifySecret(s, sm.cos[sender]) {
		return sm.reject(sender, NewHashChainMismatchErrorf(
			"secret from %v does not hash to revealed co", sender))
	}
	next := sm.revealOrder[len(sm.secrets)]
	if sender != next {
		return sm.reject(sender, NewRevealOrderViolationErrorf(
			"expected reveal from %v, got %v", next, sender))
	}

	sm.secrets[sender] = s
	sm.accept(sender)

	if len(sm.secrets) == len(sm.participants) {
		sm.randomness = sm.finalRandomness()
		sm.advance(beacon.PhaseDone)
		sm.consumer.OnRandomnessFinalized(sm.randomness)
		sm.log.Info().
			Str("randomness", sm.randomness.Hex()).
			Msg("final randomness computed")
	}
	return nil
}

// FinalRandomness returns the final random value, available only once the
// run is DONE. Before that it returns an IncompleteStateError.
func (sm *StateMachine) FinalRandomness() (crypto.Hash, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.phase != beacon.PhaseDone {
		return crypto.ZeroHash, NewIncompleteStateErrorf(
			"final randomness not available in phase %s", sm.phase)
	}
	return sm.randomness, nil
}

// RevealOrder returns the fixed reveal order. It is only available once all
// commitments are locked, i.e. from the REVEAL2 phase on.
func (sm *StateMachine) RevealOrder() ([]beacon.Address, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.revealOrder == nil {
		return nil, NewIncompleteStateErrorf(
			"reveal order not fixed in phase %s", sm.phase)
	}
	return append([]beacon.Address(nil), sm.revealOrder...), nil
}

// Phase returns the current phase of the run.
func (sm *StateMachine) Phase() beacon.Phase {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.phase
}

// Reset discards all per-run state and returns to the COMMIT phase. It is
// scoped to this instance, so independent runs on other instances are
// unaffected. Reset is meant for starting a fresh run, never for rescuing a
// stalled one mid-phase with partial state retained.
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.resetLocked()
	sm.log.Info().Msg("state machine reset")
}

func (sm *StateMachine) resetLocked() {
	sm.phase = beacon.PhaseCommit
	sm.cvs = make(map[beacon.Address]crypto.Hash, len(sm.participants))
	sm.cos = make(map[beacon.Address]crypto.Hash, len(sm.participants))
	sm.secrets = make(map[beacon.Address]crypto.Secret, len(sm.participants))
	sm.revealOrder = nil
	sm.randomness = crypto.ZeroHash
}

func (sm *StateMachine) checkRegistered(sender beacon.Address) error {
	for _, participant := range sm.participants {
		if participant == sender {
			return nil
		}
	}
	return NewUnknownParticipantErrorf("sender %v is not registered", sender)
}

// finalRandomness computes omega_o = H(s_1 || ... || s_n) with the secrets
// concatenated in reveal order.
func (sm *StateMachine) finalRandomness() crypto.Hash {
	concat := make([]byte, 0, len(sm.revealOrder)*crypto.SecretLen)
	for _, participant := range sm.revealOrder {
		s := sm.secrets[participant]
		concat = append(concat, s[:]...)
	}
	return crypto.MakeHash(concat)
}

func (sm *StateMachine) accept(sender beacon.Address) {
	sm.log.Debug().
		Str("sender", sender.Short()).
		Str("phase", sm.phase.String()).
		Msg("submission accepted")
	sm.consumer.OnSubmissionAccepted(sender, sm.phase.String())
}

func (sm *StateMachine) reject(sender beacon.Address, err error) error {
	sm.log.Warn().
		Err(err).
		Str("sender", sender.Short()).
		Str("phase", sm.phase.String()).
		Msg("submission rejected")
	sm.consumer.OnSubmissionRejected(sender, sm.phase.String(), err)
	return err
}

func (sm *StateMachine) advance(next beacon.Phase) {
	from := sm.phase
	sm.phase = next
	sm.log.Info().
		Str("from", from.String()).
		Str("to", next.String()).
		Msg("phase advanced")
	sm.consumer.OnPhaseTransition(from.String(), next.String())
}

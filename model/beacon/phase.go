package beacon

// Phase captures the lifecycle of a direct-variant protocol run. Transitions
// are strictly forward: Commit -> Reveal1 -> Reveal2 -> Done. A phase advances
// automatically when every registered participant has a valid entry for the
// current round; no transition skips or reorders phases.
type Phase uint8

const (
	// PhaseCommit is the initial phase, collecting the cv commitments.
	PhaseCommit Phase = iota
	// PhaseReveal1 collects the co values, each checked against its locked cv.
	PhaseReveal1
	// PhaseReveal2 collects the secrets, strictly in reveal order.
	PhaseReveal2
	// PhaseDone means the final randomness has been computed.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCommit:
		return "COMMIT"
	case PhaseReveal1:
		return "REVEAL1"
	case PhaseReveal2:
		return "REVEAL2"
	case PhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// LedgerPhase captures the lifecycle of the hybrid-variant ledger contract,
// which only ever sees two submissions from the leader: the merkle root of
// the commitments, and the final batch of secrets and signatures.
type LedgerPhase uint8

const (
	// LedgerPhaseAwaitingRoot is the initial phase, waiting for the leader to
	// publish the merkle root of the collected cv commitments.
	LedgerPhaseAwaitingRoot LedgerPhase = iota
	// LedgerPhaseAwaitingSecrets waits for the leader's final batch.
	LedgerPhaseAwaitingSecrets
	// LedgerPhaseDone means the batch verified and the randomness is fixed.
	LedgerPhaseDone
)

func (p LedgerPhase) String() string {
	switch p {
	case LedgerPhaseAwaitingRoot:
		return "AWAITING_ROOT"
	case LedgerPhaseAwaitingSecrets:
		return "AWAITING_SECRETS"
	case LedgerPhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

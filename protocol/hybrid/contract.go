package hybrid

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/protocol"
	"github.com/crlabs/commit-reveal2/storage/merkle"
)

// Contract is the on-ledger verifier of the hybrid topology. It is the trust
// anchor of the run: it never trusts the leader's bookkeeping, only the
// published root plus fresh recomputation from the raw secrets.
//
// Its phase machine is minimal: AWAITING_ROOT -> AWAITING_SECRETS -> DONE.
// The contract accepts exactly one root and one final batch, both only from
// the designated leader address.
type Contract struct {
	log      zerolog.Logger
	consumer protocol.Consumer

	mu           sync.Mutex
	leader       beacon.Address
	participants beacon.IdentityList
	phase        beacon.LedgerPhase

	root       crypto.Hash
	secrets    []crypto.Secret
	signatures [][]byte
	randomness crypto.Hash
}

// NewContract creates a contract that accepts submissions only from the
// given leader address. A nil consumer disables notifications.
func NewContract(log zerolog.Logger, leader beacon.Address, consumer protocol.Consumer) *Contract {
	if consumer == nil {
		consumer = protocol.NewNoopConsumer()
	}
	return &Contract{
		log: log.With().
			Str("component", "beacon_contract").
			Str("leader", leader.Short()).
			Logger(),
		consumer: consumer,
		leader:   leader,
		phase:    beacon.LedgerPhaseAwaitingRoot,
	}
}

// AddParticipant registers a participant with its verification key, and
// records the activation position. Registration is only possible before the
// root is published; the leaf layout is frozen with the root.
func (c *Contract) AddParticipant(address beacon.Address, publicKey []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != beacon.LedgerPhaseAwaitingRoot {
		return protocol.NewPhaseViolationErrorf(
			"registration requires phase %s, contract is in %s",
			beacon.LedgerPhaseAwaitingRoot, c.phase)
	}
	if c.participants.Contains(address) {
		return protocol.NewDuplicateSubmissionErrorf(
			"participant %v already registered", address)
	}
	c.participants = append(c.participants, &beacon.Identity{
		Address:   address,
		PublicKey: publicKey,
	})
	return nil
}

// SubmitRoot accepts the merkle root over the participants' cv commitments.
// Only the leader can submit it, only in the AWAITING_ROOT phase, and only
// once; acceptance advances the contract to AWAITING_SECRETS.
//
// Error returns:
//   - UnknownParticipantError if the sender is not the designated leader
//   - PhaseViolationError if a root was already accepted
func (c *Contract) SubmitRoot(sender beacon.Address, root crypto.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sender != c.leader {
		return c.reject(sender, protocol.NewUnknownParticipantErrorf(
			"root submission from %v, only leader %v may submit", sender, c.leader))
	}
	if c.phase != beacon.LedgerPhaseAwaitingRoot {
		return c.reject(sender, protocol.NewPhaseViolationErrorf(
			"root submission requires phase %s, contract is in %s",
			beacon.LedgerPhaseAwaitingRoot, c.phase))
	}

	c.root = root
	c.consumer.OnSubmissionAccepted(sender, c.phase.String())
	c.advance(beacon.LedgerPhaseAwaitingSecrets)
	c.log.Info().Str("root", root.Hex()).Msg("merkle root accepted")
	return nil
}

// Finalize accepts the final batch of secrets and cv signatures, aligned to
// activation order. For every entry the contract recomputes co = H(s) and
// cv = H(co), verifies the signature over cv against the registered key, and
// rebuilds the merkle tree from the recomputed cv leaves in activation
// order. The batch is accepted only if the rebuilt root equals the published
// root; acceptance fixes omega_o = H(secrets concatenated in activation
// order) and advances the contract to DONE.
//
// All invalid entries are reported together in one rejection reason, so the
// leader learns the full extent of a bad batch at once. Rejection leaves the
// contract in AWAITING_SECRETS with state unchanged.
//
// Error returns:
//   - UnknownParticipantError if the sender is not the designated leader
//   - PhaseViolationError outside AWAITING_SECRETS
//   - IncompleteStateError if the batch length does not match registration
//   - SignatureInvalidError for any entry whose signature fails
//   - RootMismatchError if the rebuilt root disagrees with the published one
func (c *Contract) Finalize(sender beacon.Address, secrets []crypto.Secret, signatures [][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sender != c.leader {
		return c.reject(sender, protocol.NewUnknownParticipantErrorf(
			"finalization from %v, only leader %v may submit", sender, c.leader))
	}
	if c.phase != beacon.LedgerPhaseAwaitingSecrets {
		return c.reject(sender, protocol.NewPhaseViolationErrorf(
			"finalization requires phase %s, contract is in %s",
			beacon.LedgerPhaseAwaitingSecrets, c.phase))
	}
	if len(c.participants) == 0 {
		return c.reject(sender, protocol.NewIncompleteStateErrorf(
			"cannot finalize without registered participants"))
	}
	if len(secrets) != len(c.participants) || len(signatures) != len(c.participants) {
		return c.reject(sender, protocol.NewIncompleteStateErrorf(
			"batch holds %d secrets and %d signatures for %d participants",
			len(secrets), len(signatures), len(c.participants)))
	}

	// recompute every commitment chain and verify every signature before
	// touching any contract state
	var invalid *multierror.Error
	leaves := make([][]byte, 0, len(c.participants))
	for i, identity := range c.participants {
		co := crypto.MakeHash(secrets[i][:])
		cv := crypto.MakeHash(co[:])
		if !crypto.VerifyCommitmentSig(identity.PublicKey, cv, signatures[i]) {
			invalid = multierror.Append(invalid, protocol.NewSignatureInvalidErrorf(
				"recomputed cv for %v does not verify against signature", identity.Address))
		}
		leaves = append(leaves, cv.Bytes())
	}
	if err := invalid.ErrorOrNil(); err != nil {
		return c.reject(sender, err)
	}

	tree, err := merkle.NewTree(leaves)
	if err != nil {
		// the batch length was checked against a non-empty registration
		c.log.Fatal().Err(err).Msg("could not rebuild merkle tree")
	}
	if tree.Root() != c.root {
		return c.reject(sender, protocol.NewRootMismatchErrorf(
			"rebuilt root %v does not match published root %v", tree.Root(), c.root))
	}

	concat := make([]byte, 0, len(secrets)*crypto.SecretLen)
	for _, s := range secrets {
		concat = append(concat, s[:]...)
	}
	c.randomness = crypto.MakeHash(concat)
	c.secrets = append([]crypto.Secret(nil), secrets...)
	c.signatures = make([][]byte, 0, len(signatures))
	for _, sig := range signatures {
		c.signatures = append(c.signatures, append([]byte(nil), sig...))
	}

	c.consumer.OnSubmissionAccepted(sender, c.phase.String())
	c.advance(beacon.LedgerPhaseDone)
	c.consumer.OnRandomnessFinalized(c.randomness)
	c.log.Info().
		Str("randomness", c.randomness.Hex()).
		Msg("final randomness computed")
	return nil
}

// FinalRandomness returns the final random value, available only once the
// contract is DONE. Before that it returns an IncompleteStateError.
func (c *Contract) FinalRandomness() (crypto.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != beacon.LedgerPhaseDone {
		return crypto.ZeroHash, protocol.NewIncompleteStateErrorf(
			"final randomness not available in phase %s", c.phase)
	}
	return c.randomness, nil
}

// Phase returns the current contract phase.
func (c *Contract) Phase() beacon.LedgerPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Record exports the accepted run as an audit record. It is only available
// once the contract is DONE.
func (c *Contract) Record() (*RunRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != beacon.LedgerPhaseDone {
		return nil, protocol.NewIncompleteStateErrorf(
			"run record not available in phase %s", c.phase)
	}

	record := &RunRecord{
		Leader:     c.leader.Bytes(),
		Root:       c.root.Bytes(),
		Randomness: c.randomness.Bytes(),
	}
	for i, identity := range c.participants {
		record.Participants = append(record.Participants, identity.Address.Bytes())
		record.Secrets = append(record.Secrets, c.secrets[i].Bytes())
		record.Signatures = append(record.Signatures, c.signatures[i])
	}
	return record, nil
}

// Reset discards all per-run state, including the registered participants,
// and returns to AWAITING_ROOT. Scoped to this instance.
func (c *Contract) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = beacon.LedgerPhaseAwaitingRoot
	c.participants = nil
	c.root = crypto.ZeroHash
	c.secrets = nil
	c.signatures = nil
	c.randomness = crypto.ZeroHash
	c.log.Info().Msg("contract reset")
}

func (c *Contract) reject(sender beacon.Address, err error) error {
	c.log.Warn().
		Err(err).
		Str("sender", sender.Short()).
		Str("phase", c.phase.String()).
		Msg("submission rejected")
	c.consumer.OnSubmissionRejected(sender, c.phase.String(), err)
	return err
}

func (c *Contract) advance(next beacon.LedgerPhase) {
	from := c.phase
	c.phase = next
	c.log.Info().
		Str("from", from.String()).
		Str("to", next.String()).
		Msg("phase advanced")
	c.consumer.OnPhaseTransition(from.String(), next.String())
}

// Package hybrid implements the hybrid deployment topology: an off-chain
// leader collects the commitments of all participants into a merkle tree,
// and the ledger contract only ever sees the tree root plus one final batch,
// which it verifies by recomputing everything from the raw secrets.
package hybrid

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/protocol"
	"github.com/crlabs/commit-reveal2/storage/merkle"
)

// Leader is the off-chain aggregator. It has its own identity, distinct from
// every participant, and is the only party the ledger contract accepts
// submissions from.
//
// The leader tracks activation order (the order in which participants were
// first registered) because the merkle tree leaves and the final batch must
// both be laid out in that order for the contract to rebuild an identical
// tree.
type Leader struct {
	log      zerolog.Logger
	keys     *crypto.KeyPair
	consumer protocol.Consumer

	mu           sync.Mutex
	participants beacon.IdentityList

	// address -> (cv, signature over cv), retained through the whole run
	// because the original cv signature travels with the secret into the
	// final batch
	cvs        map[beacon.Address]crypto.Hash
	signatures map[beacon.Address][]byte
	cos        map[beacon.Address]crypto.Hash
	secrets    map[beacon.Address]crypto.Secret

	tree        *merkle.Tree
	revealOrder []beacon.Address
}

// NewLeader creates a leader with the given keypair as its own identity. A
// nil consumer disables notifications.
func NewLeader(log zerolog.Logger, keys *crypto.KeyPair, consumer protocol.Consumer) *Leader {
	if consumer == nil {
		consumer = protocol.NewNoopConsumer()
	}
	l := &Leader{
		log: log.With().
			Str("component", "beacon_leader").
			Str("leader", keys.Address().Short()).
			Logger(),
		keys:       keys,
		consumer:   consumer,
		cvs:        make(map[beacon.Address]crypto.Hash),
		signatures: make(map[beacon.Address][]byte),
		cos:        make(map[beacon.Address]crypto.Hash),
		secrets:    make(map[beacon.Address]crypto.Secret),
	}
	return l
}

// Address returns the leader's own address.
func (l *Leader) Address() beacon.Address {
	return l.keys.Address()
}

// SignRoot signs a merkle root for publication to the ledger contract.
func (l *Leader) SignRoot(root crypto.Hash) ([]byte, error) {
	return l.keys.SignCommitment(root)
}

// AddParticipant registers a participant and records its activation
// position. Re-registration of a known address is rejected.
func (l *Leader) AddParticipant(address beacon.Address, publicKey []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.participants.Contains(address) {
		return protocol.NewDuplicateSubmissionErrorf(
			"participant %v already registered", address)
	}
	l.participants = append(l.participants, &beacon.Identity{
		Address:   address,
		PublicKey: publicKey,
	})
	l.log.Debug().
		Str("participant", address.Short()).
		Int("activation_index", len(l.participants)-1).
		Msg("participant registered")
	return nil
}

// ReceiveCv accepts a signed cv commitment. The signature is verified
// against the sender's registered public key and retained: it is what the
// contract later checks the recomputed cv against. Once every participant
// has a locked cv, the merkle tree over the raw cv bytes is built in
// activation order.
//
// Error returns:
//   - UnknownParticipantError if the sender is not registered
//   - DuplicateSubmissionError if the sender already has a locked cv
//   - SignatureInvalidError if the signature fails verification
func (l *Leader) ReceiveCv(sender beacon.Address, cv crypto.Hash, signature []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	identity, registered := l.participants.ByAddress(sender)
	if !registered {
		return l.reject(sender, protocol.NewUnknownParticipantErrorf(
			"sender %v is not registered", sender))
	}
	if _, exists := l.cvs[sender]; exists {
		return l.reject(sender, protocol.NewDuplicateSubmissionErrorf(
			"participant %v already submitted cv", sender))
	}
	if !crypto.VerifyCommitmentSig(identity.PublicKey, cv, signature) {
		return l.reject(sender, protocol.NewSignatureInvalidErrorf(
			"cv signature from %v does not verify", sender))
	}

	l.cvs[sender] = cv
	l.signatures[sender] = append([]byte(nil), signature...)
	l.accept(sender, "cv")

	if len(l.cvs) == len(l.participants) {
		l.buildTree()
	}
	return nil
}

// ReceiveCo accepts a co reveal, checked against the sender's locked cv.
// Once every co is in, the reveal order over the cv set is fixed.
//
// Error returns:
//   - UnknownParticipantError if the sender is not registered
//   - IncompleteStateError if the sender has no locked cv yet
//   - DuplicateSubmissionError if the sender already revealed co
//   - HashChainMismatchError if H(co) != cv
func (l *Leader) ReceiveCo(sender beacon.Address, co crypto.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.participants.Contains(sender) {
		return l.reject(sender, protocol.NewUnknownParticipantErrorf(
			"sender %v is not registered", sender))
	}
	cv, exists := l.cvs[sender]
	if !exists {
		return l.reject(sender, protocol.NewIncompleteStateErrorf(
			"no cv locked for %v", sender))
	}
	if _, exists := l.cos[sender]; exists {
		return l.reject(sender, protocol.NewDuplicateSubmissionErrorf(
			"participant %v already submitted co", sender))
	}
	if !crypto.VerifyCo(co, cv) {
		return l.reject(sender, protocol.NewHashChainMismatchErrorf(
			"co from %v does not hash to locked cv", sender))
	}

	l.cos[sender] = co
	l.accept(sender, "co")

	if len(l.cos) == len(l.participants) {
		order, err := protocol.ComputeRevealOrder(l.participants.Addresses(), l.cvs)
		if err != nil {
			// every cv is locked here, so this cannot fail on live input
			l.log.Fatal().Err(err).Msg("could not compute reveal order")
		}
		l.revealOrder = order
		l.log.Info().
			Str("first_revealer", order[0].Short()).
			Msg("reveal order fixed")
	}
	return nil
}

// ReceiveS accepts a secret reveal. The reveal order must already be fixed,
// the sender must be the next unfulfilled entry in it, and the secret must
// hash to the sender's revealed co. The secret is stored alongside the
// sender's original cv signature for the final batch.
//
// Error returns:
//   - UnknownParticipantError if the sender is not registered
//   - IncompleteStateError if the reveal order is not fixed yet
//   - DuplicateSubmissionError if the sender already revealed its secret
//   - RevealOrderViolationError if the sender is not the next revealer
//   - HashChainMismatchError if H(s) != co
func (l *Leader) ReceiveS(sender beacon.Address, s crypto.Secret) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.participants.Contains(sender) {
		return l.reject(sender, protocol.NewUnknownParticipantErrorf(
			"sender %v is not registered", sender))
	}
	if l.revealOrder == nil {
		return l.reject(sender, protocol.NewIncompleteStateErrorf(
			"reveal order not fixed yet"))
	}
	if _, exists := l.secrets[sender]; exists {
		return l.reject(sender, protocol.NewDuplicateSubmissionErrorf(
			"participant %v already revealed secret", sender))
	}
	next := l.revealOrder[len(l.secrets)]
	if sender != next {
		return l.reject(sender, protocol.NewRevealOrderViolationErrorf(
			"expected reveal from %v, got %v", next, sender))
	}
	if !crypto.VerifySecret(s, l.cos[sender]) {
		return l.reject(sender, protocol.NewHashChainMismatchErrorf(
			"secret from %v does not hash to revealed co", sender))
	}

	l.secrets[sender] = s
	l.accept(sender, "s")

	if len(l.secrets) == len(l.participants) {
		l.log.Info().Msg("all secrets received")
	}
	return nil
}

// Root returns the merkle root over the collected cv commitments. It is only
// available once every participant's cv is locked.
func (l *Leader) Root() (crypto.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tree == nil {
		return crypto.ZeroHash, protocol.NewIncompleteStateErrorf(
			"merkle root requires all %d commitments, have %d",
			len(l.participants), len(l.cvs))
	}
	return l.tree.Root(), nil
}

// Proof returns the merkle inclusion proof for a participant's cv leaf, so
// the participant can audit its inclusion under the published root.
func (l *Leader) Proof(address beacon.Address) (*merkle.Proof, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tree == nil {
		return nil, protocol.NewIncompleteStateErrorf("merkle tree not built yet")
	}
	for index, identity := range l.participants {
		if identity.Address == address {
			return l.tree.Prove(index)
		}
	}
	return nil, protocol.NewUnknownParticipantErrorf("address %v is not registered", address)
}

// FinalSubmission returns the secrets and the original cv signatures,
// both arranged in activation order, once every participant has revealed.
// Activation order is required because the merkle tree was built in that
// order and the contract must be able to rebuild an identical tree.
func (l *Leader) FinalSubmission() ([]crypto.Secret, [][]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.secrets) != len(l.participants) || len(l.participants) == 0 {
		return nil, nil, protocol.NewIncompleteStateErrorf(
			"final submission requires all %d secrets, have %d",
			len(l.participants), len(l.secrets))
	}

	secrets := make([]crypto.Secret, 0, len(l.participants))
	signatures := make([][]byte, 0, len(l.participants))
	for _, identity := range l.participants {
		secrets = append(secrets, l.secrets[identity.Address])
		signatures = append(signatures, l.signatures[identity.Address])
	}
	return secrets, signatures, nil
}

// Participants returns the registered identities in activation order.
func (l *Leader) Participants() beacon.IdentityList {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append(beacon.IdentityList(nil), l.participants...)
}

// RevealOrder returns the fixed reveal order, once available.
func (l *Leader) RevealOrder() ([]beacon.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.revealOrder == nil {
		return nil, protocol.NewIncompleteStateErrorf("reveal order not fixed yet")
	}
	return append([]beacon.Address(nil), l.revealOrder...), nil
}

func (l *Leader) buildTree() {
	leaves := make([][]byte, 0, len(l.participants))
	for _, identity := range l.participants {
		cv := l.cvs[identity.Address]
		leaves = append(leaves, cv.Bytes())
	}
	tree, err := merkle.NewTree(leaves)
	if err != nil {
		// the leaf set is complete and every leaf is a hash, so this
		// cannot fail on live input
		l.log.Fatal().Err(err).Msg("could not build merkle tree")
	}
	l.tree = tree
	l.log.Info().
		Str("root", tree.Root().Hex()).
		Int("leaves", tree.Size()).
		Msg("merkle tree built")
}

func (l *Leader) accept(sender beacon.Address, round string) {
	l.log.Debug().
		Str("sender", sender.Short()).
		Str("round", round).
		Msg("submission accepted")
	l.consumer.OnSubmissionAccepted(sender, round)
}

func (l *Leader) reject(sender beacon.Address, err error) error {
	l.log.Warn().
		Err(err).
		Str("sender", sender.Short()).
		Msg("submission rejected")
	l.consumer.OnSubmissionRejected(sender, "leader", err)
	return err
}

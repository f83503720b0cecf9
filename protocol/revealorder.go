package protocol

import (
	"bytes"
	"sort"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
)

// ComputeRevealOrder derives the order in which participants must disclose
// their secrets, from the complete set of locked cv commitments:
//
//  1. Omega = bytewise XOR over all cv values. XOR is commutative and
//     associative, so the registration order cannot affect the aggregate.
//  2. For each participant, d = H(XOR(Omega, cv)). The "distance" is XOR,
//     not an arithmetic difference.
//  3. Sort participants ascending by d, compared as fixed-width big-endian
//     byte strings.
//
// Every d depends on every participant's commitment, so no position is
// computable until all commitments are locked. This is what stops a
// participant from steering its own reveal position by choosing its secret
// adaptively.
//
// All registered participants must have a commitment in cvs; partial input
// returns an IncompleteStateError. The result is a permutation of the full
// participant set.
//
// Should two participants ever produce an identical d (cryptographically
// negligible), the tie is broken by lexicographic comparison of the
// addresses themselves, so the order stays total and deterministic.
func ComputeRevealOrder(participants []beacon.Address, cvs map[beacon.Address]crypto.Hash) ([]beacon.Address, error) {
	if len(participants) == 0 {
		return nil, NewIncompleteStateErrorf("cannot compute reveal order without participants")
	}

	omega := crypto.ZeroHash
	for _, participant := range participants {
		cv, exists := cvs[participant]
		if !exists {
			return nil, NewIncompleteStateErrorf("missing commitment for participant %v", participant)
		}
		omega = crypto.XORHashes(omega, cv)
	}

	distances := make(map[beacon.Address]crypto.Hash, len(participants))
	for _, participant := range participants {
		diff := crypto.XORHashes(omega, cvs[participant])
		distances[participant] = crypto.MakeHash(diff[:])
	}

	order := make([]beacon.Address, len(participants))
	copy(order, participants)
	sort.Slice(order, func(i, j int) bool {
		di, dj := distances[order[i]], distances[order[j]]
		if cmp := bytes.Compare(di[:], dj[:]); cmp != 0 {
			return cmp < 0
		}
		return bytes.Compare(order[i][:], order[j][:]) < 0
	})

	return order, nil
}

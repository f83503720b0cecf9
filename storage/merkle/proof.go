package merkle

import (
	"github.com/crlabs/commit-reveal2/crypto"
)

// Proof captures all data needed for an inclusion proof of a single leaf
// under the tree root. A participant can use it to audit that its commitment
// was included, at its activation position, under the published root.
type Proof struct {
	// Leaf is the raw leaf value the proof is for.
	Leaf crypto.Hash
	// Index is the position of the leaf in the tree's leaf order.
	Index int
	// Siblings holds the sibling digest for every level at which the path
	// node has one, bottom up. Levels where the path node was promoted
	// without a sibling contribute no entry.
	Siblings []crypto.Hash
	// Lefts[i] is true if Siblings[i] is the left child at its level.
	Lefts []bool
}

// Prove generates an inclusion proof for the leaf at the given index.
func (t *Tree) Prove(index int) (*Proof, error) {
	if index < 0 || index >= t.Size() {
		return nil, ErrIndexOutOfRange
	}

	proof := &Proof{
		Leaf:  t.levels[0][index],
		Index: index,
	}

	pos := index
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof.Siblings = append(proof.Siblings, level[sibling])
			proof.Lefts = append(proof.Lefts, sibling < pos)
		}
		pos /= 2
	}

	return proof, nil
}

// Verify verifies the proof by reconstructing the hash values bottom up and
// cross-checking the constructed root hash with the given one. It returns
// true if and only if the proof is consistent with the root.
//
// Verification is deliberately independent of the tree the proof came from:
// it recomputes everything from the proof contents alone.
func (p *Proof) Verify(expectedRoot crypto.Hash) bool {
	if len(p.Siblings) != len(p.Lefts) {
		return false
	}

	current := p.Leaf
	for i, sibling := range p.Siblings {
		if p.Lefts[i] {
			current = hashPair(sibling, current)
		} else {
			current = hashPair(current, sibling)
		}
	}
	return current == expectedRoot
}

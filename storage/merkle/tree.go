// Package merkle implements the binary hash tree used to commit to the set
// of cv values collected by the leader. Leaves are inserted as raw bytes,
// without any additional leaf hashing, in the order given by the caller; the
// protocol requires activation order so that the ledger contract can rebuild
// an identical tree from the recomputed commitments.
//
// Interior nodes are the Keccak-256 hash of the concatenated children. A node
// without a right sibling is promoted to the next level unchanged.
package merkle

import (
	"errors"

	"github.com/crlabs/commit-reveal2/crypto"
)

var (
	// ErrEmptyTree is returned when constructing a tree with no leaves.
	ErrEmptyTree = errors.New("merkle tree requires at least one leaf")

	// ErrIndexOutOfRange is returned when proving a leaf index that does not
	// exist in the tree.
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)

// Tree is an immutable merkle tree over a fixed leaf set. All levels are
// retained so that inclusion proofs can be generated for any leaf.
type Tree struct {
	// levels[0] holds the leaf digests, levels[len-1] holds only the root.
	levels [][]crypto.Hash
}

// NewTree builds a merkle tree over the given leaves. The leaves are used
// raw: each leaf digest is the leaf bytes themselves, which must therefore be
// exactly one hash in length. The leaf order is preserved and significant.
func NewTree(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	level := make([]crypto.Hash, 0, len(leaves))
	for _, leaf := range leaves {
		digest, ok := crypto.HashFromBytes(leaf)
		if !ok {
			return nil, errors.New("merkle leaf must be exactly one hash in length")
		}
		level = append(level, digest)
	}

	levels := [][]crypto.Hash{level}
	for len(level) > 1 {
		next := make([]crypto.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				// odd node, promote unchanged
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels}, nil
}

// Root returns the merkle root.
func (t *Tree) Root() crypto.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Size returns the number of leaves.
func (t *Tree) Size() int {
	return len(t.levels[0])
}

func hashPair(left, right crypto.Hash) crypto.Hash {
	data := make([]byte, 0, 2*crypto.HashLen)
	data = append(data, left[:]...)
	data = append(data, right[:]...)
	return crypto.MakeHash(data)
}

package crypto

import (
	"encoding/hex"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// HashLen is the output size of the protocol hash function (Keccak-256).
const HashLen = 32

// Hash is the fixed-size output of the protocol hash function. Commitments,
// merkle roots and the final randomness are all values of this type.
type Hash [HashLen]byte

// ZeroHash is the all-zero hash value.
var ZeroHash = Hash{}

// MakeHash computes the Keccak-256 hash of the input data.
func MakeHash(data []byte) Hash {
	var h Hash
	copy(h[:], gethcrypto.Keccak256(data))
	return h
}

// Bytes returns the byte slice representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String returns the string representation of the hash.
func (h Hash) String() string {
	return h.Hex()
}

// HashFromBytes converts a byte slice to a Hash. The slice must be exactly
// HashLen bytes; anything else is a programming error on the caller's side.
func HashFromBytes(b []byte) (Hash, bool) {
	var h Hash
	if len(b) != HashLen {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

// XORHashes computes the bytewise XOR of two hashes. The protocol uses XOR
// both to aggregate all commitments and as the per-participant distance
// measure; it is deliberately not an arithmetic difference.
func XORHashes(a, b Hash) Hash {
	var out Hash
	for i := 0; i < HashLen; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

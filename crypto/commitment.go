package crypto

import (
	"crypto/rand"
	"fmt"
)

// SecretLen is the size of a participant secret.
const SecretLen = 32

// Secret is a participant's hidden random contribution. It is generated once
// per run and must never be reused across runs.
type Secret [SecretLen]byte

// Bytes returns the byte slice representation of the secret.
func (s Secret) Bytes() []byte { return s[:] }

// SecretFromBytes converts a byte slice to a Secret. The slice must be
// exactly SecretLen bytes.
func SecretFromBytes(b []byte) (Secret, bool) {
	var s Secret
	if len(b) != SecretLen {
		return s, false
	}
	copy(s[:], b)
	return s, true
}

// CommitmentChain is the s -> co -> cv hash chain a participant builds before
// revealing anything:
//
//	co = H(s)
//	cv = H(co)
//
// The participant locks cv first, then reveals co (checked against cv), then
// reveals s (checked against co).
type CommitmentChain struct {
	S  Secret
	Co Hash
	Cv Hash
}

// GenerateCommitmentChain samples a fresh secret from the system CSPRNG and
// derives the commitment chain from it.
func GenerateCommitmentChain() (*CommitmentChain, error) {
	var s Secret
	_, err := rand.Read(s[:])
	if err != nil {
		return nil, fmt.Errorf("could not sample secret: %w", err)
	}
	return CommitmentChainFromSecret(s), nil
}

// CommitmentChainFromSecret derives the full commitment chain from a given
// secret. Both commitments are pure functions of the secret.
func CommitmentChainFromSecret(s Secret) *CommitmentChain {
	co := MakeHash(s[:])
	cv := MakeHash(co[:])
	return &CommitmentChain{
		S:  s,
		Co: co,
		Cv: cv,
	}
}

// VerifyCo checks that a revealed co verifies against a previously locked cv.
func VerifyCo(co Hash, cv Hash) bool {
	return MakeHash(co[:]) == cv
}

// VerifySecret checks that a revealed secret verifies against a previously
// locked co.
func VerifySecret(s Secret, co Hash) bool {
	return MakeHash(s[:]) == co
}

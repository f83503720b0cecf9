package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateCommitmentChain checks that a generated chain is internally
// consistent and that independent chains do not collide.
func TestGenerateCommitmentChain(t *testing.T) {
	chain, err := GenerateCommitmentChain()
	require.NoError(t, err)

	assert.Equal(t, MakeHash(chain.S[:]), chain.Co)
	assert.Equal(t, MakeHash(chain.Co[:]), chain.Cv)
	assert.True(t, VerifyCo(chain.Co, chain.Cv))
	assert.True(t, VerifySecret(chain.S, chain.Co))

	other, err := GenerateCommitmentChain()
	require.NoError(t, err)
	assert.NotEqual(t, chain.S, other.S)
	assert.NotEqual(t, chain.Cv, other.Cv)
}

// TestCommitmentChainFromSecret checks that the commitments are pure
// functions of the secret.
func TestCommitmentChainFromSecret(t *testing.T) {
	var s Secret
	copy(s[:], []byte("fixed secret for derivation test"))

	chain1 := CommitmentChainFromSecret(s)
	chain2 := CommitmentChainFromSecret(s)
	assert.Equal(t, chain1, chain2)

	// any bit flip in the secret changes both commitments
	flipped := s
	flipped[0] ^= 0x01
	chain3 := CommitmentChainFromSecret(flipped)
	assert.NotEqual(t, chain1.Co, chain3.Co)
	assert.NotEqual(t, chain1.Cv, chain3.Cv)
}

func TestVerifyChainRejectsTampering(t *testing.T) {
	chain, err := GenerateCommitmentChain()
	require.NoError(t, err)

	tamperedCo := chain.Co
	tamperedCo[5] ^= 0x80
	assert.False(t, VerifyCo(tamperedCo, chain.Cv))

	tamperedS := chain.S
	tamperedS[31] ^= 0x01
	assert.False(t, VerifySecret(tamperedS, chain.Co))
}

func TestSecretFromBytes(t *testing.T) {
	b := make([]byte, SecretLen)
	b[0] = 0xff

	s, ok := SecretFromBytes(b)
	require.True(t, ok)
	assert.Equal(t, b, s.Bytes())

	_, ok = SecretFromBytes(b[:SecretLen-1])
	assert.False(t, ok)
}

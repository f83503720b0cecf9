package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crlabs/commit-reveal2/model/beacon"
)

func TestKeyPairAddress(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	address := kp.Address()
	assert.NotEqual(t, beacon.ZeroAddress, address)

	// address is a pure function of the public key
	assert.Equal(t, address, AddressFromPublicKey(kp.PublicKey()))

	// uncompressed secp256k1 public key: 0x04 prefix plus two coordinates
	pub := kp.PublicKey()
	require.Len(t, pub, 65)
	assert.Equal(t, byte(0x04), pub[0])

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.NotEqual(t, address, other.Address())
}

func TestSignCommitmentRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	cv := MakeHash([]byte("commitment"))
	sig, err := kp.SignCommitment(cv)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLen)

	assert.True(t, VerifyCommitmentSig(kp.PublicKey(), cv, sig))
}

func TestVerifyCommitmentSigRejects(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	stranger, err := GenerateKeyPair()
	require.NoError(t, err)

	cv := MakeHash([]byte("commitment"))
	sig, err := kp.SignCommitment(cv)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		assert.False(t, VerifyCommitmentSig(stranger.PublicKey(), cv, sig))
	})

	t.Run("wrong commitment", func(t *testing.T) {
		assert.False(t, VerifyCommitmentSig(kp.PublicKey(), MakeHash([]byte("other")), sig))
	})

	t.Run("tampered signature", func(t *testing.T) {
		tampered := append([]byte(nil), sig...)
		tampered[10] ^= 0x01
		assert.False(t, VerifyCommitmentSig(kp.PublicKey(), cv, tampered))
	})

	t.Run("truncated signature", func(t *testing.T) {
		assert.False(t, VerifyCommitmentSig(kp.PublicKey(), cv, sig[:32]))
	})

	t.Run("malformed key", func(t *testing.T) {
		assert.False(t, VerifyCommitmentSig([]byte{0x04, 0x01}, cv, sig))
	})
}

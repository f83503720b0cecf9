package crypto

import (
	"crypto/ecdsa"
	"fmt"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/crlabs/commit-reveal2/model/beacon"
)

// SignatureLen is the size of a commitment signature: 65 bytes of compact
// recoverable ECDSA in [R || S || V] form, as produced by the secp256k1
// signer.
const SignatureLen = 65

// KeyPair holds a participant's secp256k1 keypair. The private key never
// leaves the participant; the engine only ever sees the public key.
type KeyPair struct {
	sk *ecdsa.PrivateKey
}

// GenerateKeyPair generates a fresh secp256k1 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	sk, err := gethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("could not generate secp256k1 key: %w", err)
	}
	return &KeyPair{sk: sk}, nil
}

// PublicKey returns the uncompressed serialization of the public key
// (65 bytes, leading 0x04).
func (kp *KeyPair) PublicKey() []byte {
	return gethcrypto.FromECDSAPub(&kp.sk.PublicKey)
}

// Address derives the participant address from the public key: the Keccak-256
// hash of the uncompressed public key (without the 0x04 prefix) cropped to
// its last 20 bytes.
func (kp *KeyPair) Address() beacon.Address {
	return AddressFromPublicKey(kp.PublicKey())
}

// Identity returns the registration identity for this keypair.
func (kp *KeyPair) Identity() *beacon.Identity {
	return &beacon.Identity{
		Address:   kp.Address(),
		PublicKey: kp.PublicKey(),
	}
}

// SignCommitment signs a cv commitment. The signature is over the Keccak-256
// digest of the commitment bytes, as required by the secp256k1 signer.
func (kp *KeyPair) SignCommitment(cv Hash) ([]byte, error) {
	digest := MakeHash(cv[:])
	sig, err := gethcrypto.Sign(digest[:], kp.sk)
	if err != nil {
		return nil, fmt.Errorf("could not sign commitment: %w", err)
	}
	return sig, nil
}

// VerifyCommitmentSig verifies a commitment signature against an uncompressed
// public key. A malformed signature or public key verifies as false, never as
// an error; the engine treats both identically.
func VerifyCommitmentSig(publicKey []byte, cv Hash, sig []byte) bool {
	if len(sig) != SignatureLen {
		return false
	}
	digest := MakeHash(cv[:])
	// VerifySignature expects the signature without the recovery id.
	return gethcrypto.VerifySignature(publicKey, digest[:], sig[:SignatureLen-1])
}

// AddressFromPublicKey derives the participant address from an uncompressed
// public key serialization.
func AddressFromPublicKey(publicKey []byte) beacon.Address {
	if len(publicKey) == 0 {
		return beacon.ZeroAddress
	}
	digest := MakeHash(publicKey[1:])
	return beacon.BytesToAddress(digest[HashLen-beacon.AddressLength:])
}

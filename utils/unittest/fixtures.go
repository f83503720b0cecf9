package unittest

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/participant"
)

// ParticipantFixture returns a participant with a fresh keypair and a
// generated commitment chain, ready for the commit round.
func ParticipantFixture(t *testing.T) *participant.Participant {
	p, err := participant.New()
	require.NoError(t, err)
	require.NoError(t, p.GenerateCommitments())
	return p
}

// ParticipantFixtures returns n independent participant fixtures.
func ParticipantFixtures(t *testing.T, n int) []*participant.Participant {
	participants := make([]*participant.Participant, 0, n)
	for i := 0; i < n; i++ {
		participants = append(participants, ParticipantFixture(t))
	}
	return participants
}

// AddressesOf returns the addresses of the given participants, in order.
func AddressesOf(participants []*participant.Participant) []beacon.Address {
	addresses := make([]beacon.Address, 0, len(participants))
	for _, p := range participants {
		addresses = append(addresses, p.Address())
	}
	return addresses
}

// AddressFixture returns a random participant address, not bound to any key.
func AddressFixture(t *testing.T) beacon.Address {
	var b [beacon.AddressLength]byte
	_, err := rand.Read(b[:])
	require.NoError(t, err)
	return beacon.BytesToAddress(b[:])
}

// HashFixture returns a random hash value.
func HashFixture(t *testing.T) crypto.Hash {
	var b [crypto.HashLen]byte
	_, err := rand.Read(b[:])
	require.NoError(t, err)
	h, ok := crypto.HashFromBytes(b[:])
	require.True(t, ok)
	return h
}

// SecretFixture returns a random secret.
func SecretFixture(t *testing.T) crypto.Secret {
	var b [crypto.SecretLen]byte
	_, err := rand.Read(b[:])
	require.NoError(t, err)
	s, ok := crypto.SecretFromBytes(b[:])
	require.True(t, ok)
	return s
}

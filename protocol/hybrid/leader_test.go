package hybrid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/participant"
	"github.com/crlabs/commit-reveal2/protocol"
	"github.com/crlabs/commit-reveal2/protocol/hybrid"
	"github.com/crlabs/commit-reveal2/storage/merkle"
	"github.com/crlabs/commit-reveal2/utils/unittest"
)

func leaderFixture(t *testing.T, participants []*participant.Participant) *hybrid.Leader {
	keys, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	leader := hybrid.NewLeader(unittest.Logger(), keys, nil)
	for _, p := range participants {
		identity := p.Identity()
		require.NoError(t, leader.AddParticipant(identity.Address, identity.PublicKey))
	}
	return leader
}

func submitAllCv(t *testing.T, leader *hybrid.Leader, participants []*participant.Participant) {
	for _, p := range participants {
		sig, err := p.SignCv()
		require.NoError(t, err)
		require.NoError(t, leader.ReceiveCv(p.Address(), p.Cv(), sig))
	}
}

func submitAllCo(t *testing.T, leader *hybrid.Leader, participants []*participant.Participant) {
	for _, p := range participants {
		require.NoError(t, leader.ReceiveCo(p.Address(), p.Co()))
	}
}

func submitAllS(t *testing.T, leader *hybrid.Leader, participants []*participant.Participant) {
	order, err := leader.RevealOrder()
	require.NoError(t, err)
	for _, address := range order {
		p := byAddress(participants, address)
		require.NoError(t, leader.ReceiveS(p.Address(), p.Secret()))
	}
}

func byAddress(participants []*participant.Participant, address beacon.Address) *participant.Participant {
	for _, p := range participants {
		if p.Address() == address {
			return p
		}
	}
	return nil
}

func TestLeaderRegistration(t *testing.T) {
	participants := unittest.ParticipantFixtures(t, 3)
	leader := leaderFixture(t, participants)

	// re-registration of a known address is rejected
	identity := participants[0].Identity()
	err := leader.AddParticipant(identity.Address, identity.PublicKey)
	assert.True(t, protocol.IsDuplicateSubmissionError(err))

	// activation order is first-registration order
	assert.Equal(t, unittest.AddressesOf(participants), leader.Participants().Addresses())
}

func TestLeaderReceiveCv(t *testing.T) {
	participants := unittest.ParticipantFixtures(t, 3)
	leader := leaderFixture(t, participants)

	t.Run("unknown sender", func(t *testing.T) {
		stranger := unittest.ParticipantFixture(t)
		sig, err := stranger.SignCv()
		require.NoError(t, err)
		err = leader.ReceiveCv(stranger.Address(), stranger.Cv(), sig)
		assert.True(t, protocol.IsUnknownParticipantError(err))
	})

	t.Run("bad signature", func(t *testing.T) {
		p := participants[0]
		// signature from a different key over the same commitment
		keys, err := crypto.GenerateKeyPair()
		require.NoError(t, err)
		badSig, err := keys.SignCommitment(p.Cv())
		require.NoError(t, err)
		err = leader.ReceiveCv(p.Address(), p.Cv(), badSig)
		assert.True(t, protocol.IsSignatureInvalidError(err))

		// the rejection stored nothing: the valid submission still works
		sig, err := p.SignCv()
		require.NoError(t, err)
		require.NoError(t, leader.ReceiveCv(p.Address(), p.Cv(), sig))
	})

	t.Run("duplicate cv", func(t *testing.T) {
		p := participants[0]
		sig, err := p.SignCv()
		require.NoError(t, err)
		err = leader.ReceiveCv(p.Address(), p.Cv(), sig)
		assert.True(t, protocol.IsDuplicateSubmissionError(err))
	})

	t.Run("root only after the last cv", func(t *testing.T) {
		_, err := leader.Root()
		assert.True(t, protocol.IsIncompleteStateError(err))

		for _, p := range participants[1:] {
			sig, err := p.SignCv()
			require.NoError(t, err)
			require.NoError(t, leader.ReceiveCv(p.Address(), p.Cv(), sig))
		}

		root, err := leader.Root()
		require.NoError(t, err)
		assert.NotEqual(t, crypto.ZeroHash, root)
	})
}

// TestLeaderMerkleRoot checks that the merkle tree is built over the raw cv
// bytes in activation order.
func TestLeaderMerkleRoot(t *testing.T) {
	participants := unittest.ParticipantFixtures(t, 5)
	leader := leaderFixture(t, participants)
	submitAllCv(t, leader, participants)

	root, err := leader.Root()
	require.NoError(t, err)

	// rebuild the expected tree independently, raw leaves in activation order
	leaves := make([][]byte, 0, len(participants))
	for _, p := range participants {
		cv := p.Cv()
		leaves = append(leaves, cv.Bytes())
	}
	tree, err := merkle.NewTree(leaves)
	require.NoError(t, err)
	assert.Equal(t, tree.Root(), root)
}

func TestLeaderInclusionProofs(t *testing.T) {
	participants := unittest.ParticipantFixtures(t, 4)
	leader := leaderFixture(t, participants)

	_, err := leader.Proof(participants[0].Address())
	assert.True(t, protocol.IsIncompleteStateError(err))

	submitAllCv(t, leader, participants)
	root, err := leader.Root()
	require.NoError(t, err)

	for i, p := range participants {
		proof, err := leader.Proof(p.Address())
		require.NoError(t, err)
		assert.Equal(t, i, proof.Index)
		assert.True(t, proof.Verify(root))
	}

	_, err = leader.Proof(unittest.AddressFixture(t))
	assert.True(t, protocol.IsUnknownParticipantError(err))
}

func TestLeaderReceiveCo(t *testing.T) {
	participants := unittest.ParticipantFixtures(t, 3)
	leader := leaderFixture(t, participants)

	t.Run("co before cv", func(t *testing.T) {
		err := leader.ReceiveCo(participants[0].Address(), participants[0].Co())
		assert.True(t, protocol.IsIncompleteStateError(err))
	})

	submitAllCv(t, leader, participants)

	t.Run("bit-flipped co", func(t *testing.T) {
		p := participants[0]
		co := p.Co()
		co[0] ^= 0x01
		err := leader.ReceiveCo(p.Address(), co)
		assert.True(t, protocol.IsHashChainMismatchError(err))
	})

	t.Run("reveal order fixed on the last co", func(t *testing.T) {
		_, err := leader.RevealOrder()
		assert.True(t, protocol.IsIncompleteStateError(err))

		submitAllCo(t, leader, participants)

		order, err := leader.RevealOrder()
		require.NoError(t, err)
		assert.Len(t, order, 3)
	})

	t.Run("duplicate co", func(t *testing.T) {
		err := leader.ReceiveCo(participants[0].Address(), participants[0].Co())
		assert.True(t, protocol.IsDuplicateSubmissionError(err))
	})
}

func TestLeaderReceiveS(t *testing.T) {
	participants := unittest.ParticipantFixtures(t, 3)
	leader := leaderFixture(t, participants)
	submitAllCv(t, leader, participants)

	t.Run("secret before reveal order is fixed", func(t *testing.T) {
		err := leader.ReceiveS(participants[0].Address(), participants[0].Secret())
		assert.True(t, protocol.IsIncompleteStateError(err))
	})

	submitAllCo(t, leader, participants)
	order, err := leader.RevealOrder()
	require.NoError(t, err)

	t.Run("out of order", func(t *testing.T) {
		p := byAddress(participants, order[2])
		err := leader.ReceiveS(p.Address(), p.Secret())
		assert.True(t, protocol.IsRevealOrderViolationError(err))
	})

	t.Run("bit-flipped secret", func(t *testing.T) {
		p := byAddress(participants, order[0])
		s := p.Secret()
		s[16] ^= 0xff
		err := leader.ReceiveS(p.Address(), s)
		assert.True(t, protocol.IsHashChainMismatchError(err))
	})

	t.Run("in order", func(t *testing.T) {
		for _, address := range order {
			p := byAddress(participants, address)
			require.NoError(t, leader.ReceiveS(p.Address(), p.Secret()))
		}
	})

	t.Run("duplicate secret", func(t *testing.T) {
		p := byAddress(participants, order[0])
		err := leader.ReceiveS(p.Address(), p.Secret())
		assert.True(t, protocol.IsDuplicateSubmissionError(err))
	})
}

// TestLeaderFinalSubmission checks that the final batch is arranged in
// activation order, not reveal order, with the original cv signatures.
func TestLeaderFinalSubmission(t *testing.T) {
	participants := unittest.ParticipantFixtures(t, 5)
	leader := leaderFixture(t, participants)

	_, _, err := leader.FinalSubmission()
	assert.True(t, protocol.IsIncompleteStateError(err))

	submitAllCv(t, leader, participants)
	submitAllCo(t, leader, participants)
	submitAllS(t, leader, participants)

	secrets, signatures, err := leader.FinalSubmission()
	require.NoError(t, err)
	require.Len(t, secrets, 5)
	require.Len(t, signatures, 5)

	for i, p := range participants {
		assert.Equal(t, p.Secret(), secrets[i])
		assert.True(t, crypto.VerifyCommitmentSig(p.Identity().PublicKey, p.Cv(), signatures[i]))
	}
}

package mpc

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func entropyFor(players ...string) ([]string, [][32]byte) {
	entropy := make([][32]byte, len(players))
	for i, p := range players {
		copy(entropy[i][:], p)
		entropy[i][31] = uint8(i + 1)
	}
	return players, entropy
}

func mustShuffle(t *testing.T, m *Mock, gameID string, players []string, entropy [][32]byte) *ShuffleResult {
	t.Helper()
	res, err := m.Shuffle(context.Background(), ShuffleRequest{
		GameID:  gameID,
		Players: players,
		Entropy: entropy,
	})
	require.NoError(t, err)
	return res
}

func TestShufflePermutationIsBijective(t *testing.T) {
	t.Parallel()

	m := NewMock(testLogger())
	players, entropy := entropyFor("alice", "bob", "carol")
	res := mustShuffle(t, m, "g1", players, entropy)

	perm := m.sessions[res.SessionID].perm
	seen := make(map[uint8]bool)
	for _, v := range perm {
		require.Less(t, int(v), 52)
		require.False(t, seen[v], "card %d appears twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, 52)
}

func TestShuffleIsDeterministicInEntropy(t *testing.T) {
	t.Parallel()

	players, entropy := entropyFor("alice", "bob")

	m1 := NewMock(testLogger())
	m2 := NewMock(testLogger())
	res1 := mustShuffle(t, m1, "g1", players, entropy)
	res2 := mustShuffle(t, m2, "g1", players, entropy)

	assert.Equal(t, m1.sessions[res1.SessionID].perm, m2.sessions[res2.SessionID].perm)
}

func TestShuffleSensitiveToAnyContribution(t *testing.T) {
	t.Parallel()

	m := NewMock(testLogger())
	players, entropy := entropyFor("alice", "bob", "carol")
	base := mustShuffle(t, m, "g1", players, entropy)

	// Flipping a single bit of a single player's contribution must
	// change the deck, whichever player it is.
	for i := range entropy {
		tampered := make([][32]byte, len(entropy))
		copy(tampered, entropy)
		tampered[i][0] ^= 0x01

		res := mustShuffle(t, m, "g1", players, tampered)
		assert.NotEqual(t, m.sessions[base.SessionID].perm, m.sessions[res.SessionID].perm,
			"contribution %d did not affect the shuffle", i)
	}
}

func TestShuffleEntropyRequirements(t *testing.T) {
	t.Parallel()

	m := NewMock(testLogger())
	ctx := context.Background()

	_, err := m.Shuffle(ctx, ShuffleRequest{
		GameID:  "g1",
		Players: []string{"alice"},
		Entropy: [][32]byte{{1}},
	})
	assert.ErrorIs(t, err, ErrNotEnoughEntropy)

	_, err = m.Shuffle(ctx, ShuffleRequest{
		GameID:  "g1",
		Players: []string{"alice", "bob", "carol"},
		Entropy: [][32]byte{{1}, {2}},
	})
	assert.ErrorIs(t, err, ErrEntropyMismatch)
}

func TestDealAndPrivateReveal(t *testing.T) {
	t.Parallel()

	m := NewMock(testLogger())
	ctx := context.Background()
	players, entropy := entropyFor("alice", "bob")
	res := mustShuffle(t, m, "g1", players, entropy)

	card, err := m.Deal(ctx, DealRequest{SessionID: res.SessionID, Position: 0, Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", card.Owner)

	// Owner can reveal privately.
	reveal, err := m.Reveal(ctx, RevealRequest{
		SessionID: res.SessionID,
		Mode:      RevealPrivate,
		Requester: "alice",
		Cards:     []EncryptedCard{*card},
	})
	require.NoError(t, err)
	require.Len(t, reveal.Indices, 1)
	assert.Equal(t, int(m.sessions[res.SessionID].perm[0]), reveal.Indices[0])

	// Anyone else cannot.
	_, err = m.Reveal(ctx, RevealRequest{
		SessionID: res.SessionID,
		Mode:      RevealPrivate,
		Requester: "bob",
		Cards:     []EncryptedCard{*card},
	})
	assert.ErrorIs(t, err, ErrNotOwner)

	// A quorum reveal works regardless of requester.
	quorum, err := m.Reveal(ctx, RevealRequest{
		SessionID: res.SessionID,
		Mode:      RevealQuorum,
		Requester: "bob",
		Cards:     []EncryptedCard{*card},
	})
	require.NoError(t, err)
	assert.Equal(t, reveal.Indices, quorum.Indices)
}

func TestDealRejectsReuseAndBadPositions(t *testing.T) {
	t.Parallel()

	m := NewMock(testLogger())
	ctx := context.Background()
	players, entropy := entropyFor("alice", "bob")
	res := mustShuffle(t, m, "g1", players, entropy)

	_, err := m.Deal(ctx, DealRequest{SessionID: res.SessionID, Position: 52, Owner: "alice"})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = m.Deal(ctx, DealRequest{SessionID: res.SessionID, Position: 7, Owner: "alice"})
	require.NoError(t, err)
	_, err = m.Deal(ctx, DealRequest{SessionID: res.SessionID, Position: 7, Owner: "bob"})
	assert.ErrorIs(t, err, ErrCardAlreadyDealt)

	_, err = m.Deal(ctx, DealRequest{SessionID: "nope", Position: 0, Owner: "alice"})
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestVerifyShuffle(t *testing.T) {
	t.Parallel()

	m := NewMock(testLogger())
	players, entropy := entropyFor("alice", "bob")
	res := mustShuffle(t, m, "g1", players, entropy)

	assert.True(t, m.VerifyShuffle(res.SessionID, res.Commitment, res.Proof))

	tampered := res.Commitment
	tampered[0] ^= 0xff
	assert.False(t, m.VerifyShuffle(res.SessionID, tampered, res.Proof))
	assert.False(t, m.VerifyShuffle("unknown", res.Commitment, res.Proof))
}

func TestVerifyReveal(t *testing.T) {
	t.Parallel()

	m := NewMock(testLogger())
	ctx := context.Background()
	players, entropy := entropyFor("alice", "bob")
	res := mustShuffle(t, m, "g1", players, entropy)

	card, err := m.Deal(ctx, DealRequest{SessionID: res.SessionID, Position: 3, Owner: "alice"})
	require.NoError(t, err)
	reveal, err := m.Reveal(ctx, RevealRequest{
		SessionID: res.SessionID,
		Mode:      RevealQuorum,
		Requester: "alice",
		Cards:     []EncryptedCard{*card},
	})
	require.NoError(t, err)

	assert.True(t, m.VerifyReveal(res.SessionID, reveal.Indices, reveal.Artifact))

	wrong := []int{(reveal.Indices[0] + 1) % 52}
	assert.False(t, m.VerifyReveal(res.SessionID, wrong, reveal.Artifact))
}

package mpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCursor(t *testing.T) {
	t.Parallel()

	sess := NewSession(&ShuffleResult{SessionID: "s1"})
	require.True(t, sess.Active())
	assert.Equal(t, 52, sess.Remaining())

	for want := 0; want < 52; want++ {
		pos, err := sess.Next()
		require.NoError(t, err)
		assert.Equal(t, want, pos)
	}

	_, err := sess.Next()
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 0, sess.Remaining())
}

func TestSessionBurnAdvancesCursor(t *testing.T) {
	t.Parallel()

	sess := NewSession(&ShuffleResult{SessionID: "s1"})
	require.NoError(t, sess.Burn())

	pos, err := sess.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestSessionInactive(t *testing.T) {
	t.Parallel()

	var sess Session
	assert.False(t, sess.Active())
	assert.Equal(t, 0, sess.Remaining())

	_, err := sess.Next()
	assert.ErrorIs(t, err, ErrSessionNotStarted)
	assert.ErrorIs(t, sess.Burn(), ErrSessionNotStarted)
}

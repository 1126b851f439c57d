package mpc

import "github.com/abrahamanavhoeba-alt/arcium-poker/internal/deck"

// Session tracks the engine-side view of one shuffled deck: which
// session it is, the shuffle commitment, and how far dealing has
// progressed. It is a plain value so game state stays copyable; the
// permutation itself never leaves the network.
type Session struct {
	ID         string
	Commitment [32]byte
	Cursor     int
}

// NewSession starts cursor tracking for a shuffle result.
func NewSession(res *ShuffleResult) Session {
	return Session{
		ID:         res.SessionID,
		Commitment: res.Commitment,
	}
}

// Active reports whether a shuffle backs this session.
func (s *Session) Active() bool {
	return s.ID != ""
}

// Next claims the next undealt deck position. Positions are handed out
// strictly once; a full deck returns ErrDeckExhausted.
func (s *Session) Next() (int, error) {
	if !s.Active() {
		return 0, ErrSessionNotStarted
	}
	if s.Cursor >= deck.Size {
		return 0, ErrDeckExhausted
	}
	pos := s.Cursor
	s.Cursor++
	return pos, nil
}

// Burn discards the next card unseen, as before each community street.
func (s *Session) Burn() error {
	_, err := s.Next()
	return err
}

// Remaining returns how many cards are still undealt.
func (s *Session) Remaining() int {
	if !s.Active() {
		return 0
	}
	return deck.Size - s.Cursor
}

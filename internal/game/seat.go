package game

import (
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/mpc"
)

// SeatStatus is the per-seat state within the fixed arena. An empty
// seat is the zero value, so vacating a seat is a plain assignment.
type SeatStatus int

const (
	SeatEmpty SeatStatus = iota
	// SeatActive is seated with chips and, mid-hand, still able to act.
	SeatActive
	// SeatFolded is out of the current hand but keeps its seat.
	SeatFolded
	// SeatAllIn has committed its whole stack this hand.
	SeatAllIn
	// SeatSittingOut is seated with no chips and skips hands.
	SeatSittingOut
)

func (s SeatStatus) String() string {
	switch s {
	case SeatEmpty:
		return "empty"
	case SeatActive:
		return "active"
	case SeatFolded:
		return "folded"
	case SeatAllIn:
		return "all-in"
	case SeatSittingOut:
		return "sitting-out"
	default:
		return "unknown"
	}
}

// Seat is one slot of the arena. All fields are values so the whole
// game state copies with an assignment.
type Seat struct {
	PlayerID  string
	Status    SeatStatus
	Stack     int
	RoundBet  int // chips committed this betting round, not yet collected
	HandBet   int // chips committed this hand, including collected rounds
	HoleCards [2]mpc.EncryptedCard
	HasCards  bool
	Acted     bool // acted since the last bet or raise this round
}

// Occupied reports whether a player holds this seat.
func (s *Seat) Occupied() bool {
	return s.Status != SeatEmpty
}

// InHand reports whether the seat still contests the current pot.
func (s *Seat) InHand() bool {
	return s.Status == SeatActive || s.Status == SeatAllIn
}

// commit moves chips from the stack into the current round. A seat
// that commits its last chip goes all-in.
func (s *Seat) commit(chips int) {
	s.Stack -= chips
	s.RoundBet += chips
	s.HandBet += chips
	if s.Stack == 0 && s.Status == SeatActive {
		s.Status = SeatAllIn
	}
}

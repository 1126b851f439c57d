package game

import (
	"fmt"
	"time"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/mpc"
)

// Stage is the hand lifecycle. Transitions are linear through the
// betting streets, any stage may abort to Finished, and Finished cycles
// back to Waiting for the next hand.
type Stage int

const (
	Waiting Stage = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	Finished
)

func (s Stage) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case PreFlop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Betting reports whether the stage is a betting street.
func (s Stage) Betting() bool {
	return s >= PreFlop && s <= River
}

// Payout records chips awarded to a seat when a hand resolves.
type Payout struct {
	Seat     int
	PlayerID string
	Amount   int
}

// Game is the complete rules state of one table, as recorded on the
// ledger. Seats form a fixed arena indexed 0..MaxSeats-1. Apart from
// Results the state is all values, so Clone is a shallow copy plus one
// slice copy.
type Game struct {
	ID      string
	Config  Config
	Stage   Stage
	HandNum int

	Seats  [MaxSeats]Seat
	Dealer int
	// Current is the seat index due to act, -1 when no action is
	// pending (round closed, showdown, or between hands).
	Current int

	Pot           int // chips collected from completed rounds
	CurrentBet    int // per-seat round total to match
	LastAggressor int

	// Community holds revealed board card indices; -1 means not yet
	// revealed. CommunityCount is how many are on board.
	Community      [5]int
	CommunityCount int

	Deck mpc.Session

	LastActionAt time.Time
	Results      []Payout
}

// New creates a game in the Waiting stage.
func New(id string, cfg Config) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		ID:      id,
		Config:  cfg,
		Stage:   Waiting,
		Dealer:  -1,
		Current: -1,
	}
	for i := range g.Community {
		g.Community[i] = -1
	}
	return g, nil
}

// Clone deep-copies the game state.
func (g *Game) Clone() *Game {
	c := *g
	if g.Results != nil {
		c.Results = append([]Payout(nil), g.Results...)
	}
	return &c
}

// SeatOf returns the seat index of a player, or -1.
func (g *Game) SeatOf(playerID string) int {
	for i := range g.Seats {
		if g.Seats[i].Occupied() && g.Seats[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// OccupiedCount returns how many seats hold players.
func (g *Game) OccupiedCount() int {
	n := 0
	for i := range g.Seats {
		if g.Seats[i].Occupied() {
			n++
		}
	}
	return n
}

// FundedSeats returns, in seat order, the seats that can play a hand.
func (g *Game) FundedSeats() []int {
	var seats []int
	for i := range g.Seats {
		if g.Seats[i].Occupied() && g.Seats[i].Stack > 0 {
			seats = append(seats, i)
		}
	}
	return seats
}

// InHandSeats returns, in seat order, the seats still contesting the
// pot.
func (g *Game) InHandSeats() []int {
	var seats []int
	for i := range g.Seats {
		if g.Seats[i].InHand() {
			seats = append(seats, i)
		}
	}
	return seats
}

// TotalChips sums stacks, the collected pot and uncollected round
// bets. Betting never changes this total; only buy-ins and cash-outs
// do.
func (g *Game) TotalChips() int {
	total := g.Pot
	for i := range g.Seats {
		total += g.Seats[i].Stack + g.Seats[i].RoundBet
	}
	return total
}

// Join seats a player with a buy-in. Seating is only possible between
// hands.
func (g *Game) Join(playerID string, buyIn int) (int, error) {
	if g.Stage != Waiting {
		return 0, fmt.Errorf("join in stage %s: %w", g.Stage, ErrGameAlreadyStarted)
	}
	if g.SeatOf(playerID) >= 0 {
		return 0, ErrPlayerAlreadyInGame
	}
	if g.OccupiedCount() >= g.Config.MaxPlayers {
		return 0, ErrGameFull
	}
	if buyIn < g.Config.MinBuyIn {
		return 0, fmt.Errorf("buy-in %d below minimum %d: %w", buyIn, g.Config.MinBuyIn, ErrBuyInTooLow)
	}
	if buyIn > g.Config.MaxBuyIn {
		return 0, fmt.Errorf("buy-in %d above maximum %d: %w", buyIn, g.Config.MaxBuyIn, ErrBuyInTooHigh)
	}

	for i := range g.Seats {
		if !g.Seats[i].Occupied() {
			g.Seats[i] = Seat{
				PlayerID: playerID,
				Status:   SeatActive,
				Stack:    buyIn,
			}
			return i, nil
		}
	}
	return 0, ErrGameFull
}

// Leave removes a player between hands and returns the stack to cash
// out.
func (g *Game) Leave(playerID string) (int, error) {
	if g.Stage != Waiting && g.Stage != Finished {
		return 0, ErrCannotLeaveDuringHand
	}
	seat := g.SeatOf(playerID)
	if seat < 0 {
		return 0, ErrPlayerNotInGame
	}
	stack := g.Seats[seat].Stack
	g.Seats[seat] = Seat{}
	return stack, nil
}

// nextSeat returns the next seat index clockwise from start (exclusive)
// satisfying keep, or -1 after a full lap.
func (g *Game) nextSeat(start int, keep func(*Seat) bool) int {
	for i := 1; i <= MaxSeats; i++ {
		idx := (start + i) % MaxSeats
		if keep(&g.Seats[idx]) {
			return idx
		}
	}
	return -1
}

package game

import (
	"fmt"
	"time"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/mpc"
)

// BeginHand moves Waiting to PreFlop: seats the funded players into
// the hand, rotates the dealer button, posts blinds and sets the first
// player to act. The deck session and the hole cards dealt from it are
// produced by the card-secrecy backend before this is applied.
func (g *Game) BeginHand(sess mpc.Session, hole map[int][2]mpc.EncryptedCard, now time.Time) error {
	if g.Stage != Waiting {
		return fmt.Errorf("begin hand in stage %s: %w", g.Stage, ErrGameAlreadyStarted)
	}
	if !sess.Active() {
		return ErrDeckNotInitialized
	}

	funded := g.FundedSeats()
	if len(funded) < g.Config.MinPlayers {
		return fmt.Errorf("%d funded seats, need %d: %w", len(funded), g.Config.MinPlayers, ErrNotEnoughPlayers)
	}
	for _, idx := range funded {
		if _, ok := hole[idx]; !ok {
			return fmt.Errorf("seat %d has no hole cards: %w", idx, ErrDeckNotInitialized)
		}
	}
	if len(hole) != len(funded) {
		return fmt.Errorf("hole cards for %d seats, %d funded: %w", len(hole), len(funded), ErrDeckNotInitialized)
	}

	for i := range g.Seats {
		seat := &g.Seats[i]
		if !seat.Occupied() {
			continue
		}
		seat.RoundBet = 0
		seat.HandBet = 0
		seat.Acted = false
		if seat.Stack > 0 {
			seat.Status = SeatActive
			seat.HoleCards = hole[i]
			seat.HasCards = true
		} else {
			seat.Status = SeatSittingOut
			seat.HasCards = false
		}
	}

	if g.Dealer < 0 {
		g.Dealer = funded[0]
	} else {
		g.Dealer = g.nextSeat(g.Dealer, func(s *Seat) bool {
			return s.Status == SeatActive
		})
	}

	g.Deck = sess
	g.Pot = 0
	g.CurrentBet = 0
	g.LastAggressor = -1
	g.Community = [5]int{-1, -1, -1, -1, -1}
	g.CommunityCount = 0
	g.Results = nil
	g.HandNum++

	g.postBlinds()
	g.Stage = PreFlop
	g.LastActionAt = now
	return nil
}

// postBlinds commits the small and big blinds and sets the preflop
// order. Heads-up the dealer posts the small blind and acts first;
// otherwise the blinds sit left of the button and action starts after
// the big blind. Posting a blind does not count as acting, which is
// what gives the big blind its preflop option.
func (g *Game) postBlinds() {
	active := func(s *Seat) bool { return s.Status == SeatActive }

	var sb, bb int
	if len(g.FundedSeats()) == 2 {
		sb = g.Dealer
		bb = g.nextSeat(sb, active)
	} else {
		sb = g.nextSeat(g.Dealer, active)
		bb = g.nextSeat(sb, active)
	}

	g.postBlind(sb, g.Config.SmallBlind)
	g.postBlind(bb, g.Config.BigBlind)
	g.CurrentBet = g.Config.BigBlind

	g.Current = g.nextSeat(bb, active)
}

// postBlind commits up to the blind; a short stack posts all-in.
func (g *Game) postBlind(seatIdx, blind int) {
	seat := &g.Seats[seatIdx]
	if blind > seat.Stack {
		blind = seat.Stack
	}
	seat.commit(blind)
}

// AdvanceStage closes a completed betting round and moves to the next
// street. The revealed indices are the community cards for the new
// street (three for the flop, one for turn and river, none entering
// showdown), already decrypted and verified by the caller.
func (g *Game) AdvanceStage(revealed []int) error {
	if !g.Stage.Betting() {
		return fmt.Errorf("advance from stage %s: %w", g.Stage, ErrInvalidStage)
	}
	if !g.RoundComplete() {
		return ErrRoundNotComplete
	}

	var want int
	switch g.Stage {
	case PreFlop:
		want = 3
	case Flop, Turn:
		want = 1
	case River:
		want = 0
	}
	if len(revealed) != want {
		return fmt.Errorf("stage %s expects %d community cards, got %d: %w", g.Stage, want, len(revealed), ErrInvalidStage)
	}

	g.collectBets()
	for _, idx := range revealed {
		g.Community[g.CommunityCount] = idx
		g.CommunityCount++
	}

	g.CurrentBet = 0
	g.LastAggressor = -1
	for i := range g.Seats {
		g.Seats[i].Acted = false
	}

	g.Stage++
	if g.Stage == Showdown {
		g.Current = -1
		return nil
	}

	// Postflop action starts left of the button.
	g.Current = g.nextSeat(g.Dealer, func(s *Seat) bool {
		return s.Status == SeatActive && s.HasCards
	})
	if g.Current < 0 {
		// Everyone left in the hand is all-in; the street has no
		// betting and the next advance follows immediately.
		return nil
	}
	return nil
}

// ApplyTimeout folds the seat due to act once its turn clock has run
// out. Timeouts are cooperative: nothing fires in the background, a
// caller submits this explicitly and the deadline is checked against
// the recorded last action time.
func (g *Game) ApplyTimeout(now time.Time) (int, error) {
	if !g.Stage.Betting() {
		return 0, fmt.Errorf("timeout in stage %s: %w", g.Stage, ErrInvalidStage)
	}
	if g.Current < 0 {
		return 0, ErrRoundNotComplete
	}
	if now.Sub(g.LastActionAt) < g.Config.TurnTimeout {
		return 0, ErrTimeoutNotReached
	}
	seat := g.Current
	if err := g.Apply(seat, Fold, 0, now); err != nil {
		return 0, err
	}
	return seat, nil
}

// Muck concedes at showdown without revealing hole cards. The mucked
// seat is treated as folded for pot resolution.
func (g *Game) Muck(playerID string) error {
	if g.Stage != Showdown {
		return fmt.Errorf("muck in stage %s: %w", g.Stage, ErrInvalidStage)
	}
	idx := g.SeatOf(playerID)
	if idx < 0 {
		return ErrPlayerNotInGame
	}
	if !g.Seats[idx].InHand() {
		return ErrInvalidAction
	}
	g.Seats[idx].Status = SeatFolded
	if remaining := g.InHandSeats(); len(remaining) == 1 {
		// Everyone else mucked; the last contender takes the pot
		// without revealing.
		g.awardUncontested()
	}
	return nil
}

// NewHand cycles Finished back to Waiting so the next hand can start.
// Broke seats sit out until they rebuy or leave.
func (g *Game) NewHand() error {
	if g.Stage != Finished {
		return fmt.Errorf("new hand in stage %s: %w", g.Stage, ErrGameNotFinished)
	}
	for i := range g.Seats {
		seat := &g.Seats[i]
		if !seat.Occupied() {
			continue
		}
		seat.RoundBet = 0
		seat.HandBet = 0
		seat.Acted = false
		seat.HasCards = false
		seat.HoleCards = [2]mpc.EncryptedCard{}
		if seat.Stack > 0 {
			seat.Status = SeatActive
		} else {
			seat.Status = SeatSittingOut
		}
	}
	g.Stage = Waiting
	g.Current = -1
	g.CurrentBet = 0
	g.LastAggressor = -1
	g.Pot = 0
	g.Community = [5]int{-1, -1, -1, -1, -1}
	g.CommunityCount = 0
	g.Deck = mpc.Session{}
	g.Results = nil
	return nil
}

// AbortHand cancels the hand in flight, returning every seat's
// contribution to its stack. Used when the card-secrecy protocol
// fails mid-hand; the engine never substitutes cards.
func (g *Game) AbortHand() error {
	if g.Stage == Waiting || g.Stage == Finished {
		return fmt.Errorf("abort in stage %s: %w", g.Stage, ErrInvalidStage)
	}
	for i := range g.Seats {
		seat := &g.Seats[i]
		if seat.HandBet > 0 {
			seat.Stack += seat.HandBet
		}
		seat.RoundBet = 0
		seat.HandBet = 0
	}
	g.Pot = 0
	g.Results = nil
	g.Stage = Finished
	g.Current = -1
	return nil
}

package game

import (
	"fmt"
	"time"
)

// Action is a player betting action. The set is closed; dispatch is a
// single switch in Apply.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

// Apply validates and executes one betting action for the seat due to
// act. Amount is the round total to reach for Bet and Raise and is
// ignored otherwise. Validation happens entirely before mutation: an
// error leaves the game unchanged.
func (g *Game) Apply(seatIdx int, action Action, amount int, now time.Time) error {
	if !g.Stage.Betting() {
		return fmt.Errorf("action in stage %s: %w", g.Stage, ErrInvalidStage)
	}
	if seatIdx != g.Current {
		return ErrNotPlayerTurn
	}
	seat := &g.Seats[seatIdx]
	if seat.Status != SeatActive {
		return ErrNotPlayerTurn
	}

	toCall := g.CurrentBet - seat.RoundBet

	switch action {
	case Fold:
		seat.Status = SeatFolded
		seat.Acted = true

	case Check:
		if toCall != 0 {
			return fmt.Errorf("check facing a bet of %d: %w", toCall, ErrInvalidAction)
		}
		seat.Acted = true

	case Call:
		if toCall <= 0 {
			return fmt.Errorf("nothing to call: %w", ErrInvalidAction)
		}
		if toCall >= seat.Stack {
			// Calling for less than the full amount is an all-in call.
			seat.commit(seat.Stack)
		} else {
			seat.commit(toCall)
		}
		seat.Acted = true

	case Bet:
		if g.CurrentBet != 0 {
			return fmt.Errorf("bet facing a bet, raise instead: %w", ErrInvalidAction)
		}
		if amount <= 0 {
			return ErrInvalidBetAmount
		}
		if amount > seat.Stack {
			return ErrInsufficientChips
		}
		if amount < g.Config.BigBlind && amount != seat.Stack {
			return fmt.Errorf("bet %d below big blind %d: %w", amount, g.Config.BigBlind, ErrInvalidBetAmount)
		}
		seat.commit(amount)
		g.CurrentBet = amount
		g.reopenAction(seatIdx)

	case Raise:
		if g.CurrentBet == 0 {
			return fmt.Errorf("raise with no bet to raise: %w", ErrInvalidAction)
		}
		if amount <= g.CurrentBet {
			return fmt.Errorf("raise to %d does not exceed current bet %d: %w", amount, g.CurrentBet, ErrInvalidBetAmount)
		}
		chips := amount - seat.RoundBet
		if chips > seat.Stack {
			return ErrInsufficientChips
		}
		// The minimum is on the raise increment: the new total must add
		// at least MinRaiseMultiplier times the current bet on top of
		// the call. A short stack may raise less by going all-in.
		minTo := g.CurrentBet + g.CurrentBet*g.Config.MinRaiseMultiplier
		if amount < minTo && chips != seat.Stack {
			return fmt.Errorf("raise to %d below minimum %d: %w", amount, minTo, ErrInvalidBetAmount)
		}
		seat.commit(chips)
		full := amount >= minTo
		g.CurrentBet = amount
		if full {
			g.reopenAction(seatIdx)
		} else {
			// An under-minimum all-in raises the price to call without
			// reopening action for seats that already acted.
			seat.Acted = true
		}

	case AllIn:
		if seat.Stack <= 0 {
			return ErrInsufficientChips
		}
		minTo := g.CurrentBet + g.CurrentBet*g.Config.MinRaiseMultiplier
		seat.commit(seat.Stack)
		if seat.RoundBet > g.CurrentBet {
			full := seat.RoundBet >= minTo
			g.CurrentBet = seat.RoundBet
			if full {
				g.reopenAction(seatIdx)
			} else {
				seat.Acted = true
			}
		} else {
			seat.Acted = true
		}

	default:
		return ErrInvalidAction
	}

	g.LastActionAt = now

	if action == Fold && len(g.InHandSeats()) == 1 {
		g.awardUncontested()
		return nil
	}

	if g.RoundComplete() {
		g.Current = -1
	} else {
		g.advanceTurn()
	}
	return nil
}

// reopenAction registers a bet or raise: everyone else must act again.
func (g *Game) reopenAction(aggressor int) {
	for i := range g.Seats {
		g.Seats[i].Acted = false
	}
	g.Seats[aggressor].Acted = true
	g.LastAggressor = aggressor
}

// RoundComplete reports whether the betting round is closed: every
// seat still able to act has acted since the last aggression and
// matched the current bet. All-in and folded seats are exempt. The big
// blind's preflop option falls out of the acted flags, since posting a
// blind does not count as acting.
func (g *Game) RoundComplete() bool {
	if !g.Stage.Betting() {
		return true
	}
	for i := range g.Seats {
		seat := &g.Seats[i]
		if seat.Status != SeatActive || !seat.HasCards {
			continue
		}
		if !seat.Acted || seat.RoundBet != g.CurrentBet {
			return false
		}
	}
	return true
}

// advanceTurn moves Current to the next seat able to act.
func (g *Game) advanceTurn() {
	next := g.nextSeat(g.Current, func(s *Seat) bool {
		return s.Status == SeatActive && s.HasCards
	})
	g.Current = next
}

// awardUncontested ends the hand when everyone else has folded. The
// last seat standing takes the pot without a showdown; no cards are
// revealed.
func (g *Game) awardUncontested() {
	g.collectBets()
	remaining := g.InHandSeats()
	winner := remaining[0]
	g.Seats[winner].Stack += g.Pot
	g.Results = []Payout{{
		Seat:     winner,
		PlayerID: g.Seats[winner].PlayerID,
		Amount:   g.Pot,
	}}
	g.Pot = 0
	g.Stage = Finished
	g.Current = -1
}

// collectBets sweeps round bets into the pot at the end of a street.
func (g *Game) collectBets() {
	for i := range g.Seats {
		g.Pot += g.Seats[i].RoundBet
		g.Seats[i].RoundBet = 0
	}
}

// ValidActions lists what the seat may legally do right now, for
// clients that present choices. Amount bounds follow the same rules
// Apply enforces.
func (g *Game) ValidActions(seatIdx int) []Action {
	if !g.Stage.Betting() || seatIdx != g.Current {
		return nil
	}
	seat := &g.Seats[seatIdx]
	if seat.Status != SeatActive {
		return nil
	}

	actions := []Action{Fold}
	toCall := g.CurrentBet - seat.RoundBet

	if toCall == 0 {
		actions = append(actions, Check)
		if seat.Stack > 0 {
			actions = append(actions, Bet, AllIn)
		}
		return actions
	}

	// A call for exactly the whole stack is still a call; Apply caps
	// anything beyond the stack to an all-in.
	if toCall <= seat.Stack {
		actions = append(actions, Call)
		if seat.RoundBet+seat.Stack > g.CurrentBet {
			actions = append(actions, Raise)
		}
	}
	actions = append(actions, AllIn)
	return actions
}

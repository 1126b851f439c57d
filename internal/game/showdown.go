package game

import (
	"fmt"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/evaluator"
)

// SettleShowdown resolves the hand from the revealed hole cards. The
// caller supplies the evaluated best hand per contending seat; every
// seat still in the hand must be present. Each pot goes to the
// strongest eligible hand, split evenly on ties with remainder chips
// to the first winning seat in seat order. The total paid out always
// equals the pot on record.
func (g *Game) SettleShowdown(hands map[int]evaluator.EvaluatedHand) error {
	if g.Stage != Showdown {
		return fmt.Errorf("settle in stage %s: %w", g.Stage, ErrInvalidStage)
	}
	contenders := g.InHandSeats()
	if len(contenders) == 0 {
		return fmt.Errorf("no contenders at showdown: %w", ErrInvalidAction)
	}
	for _, idx := range contenders {
		if _, ok := hands[idx]; !ok {
			return fmt.Errorf("seat %d has no evaluated hand: %w", idx, ErrInvalidAction)
		}
	}

	pots := g.BuildPots()

	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	if total != g.Pot {
		return fmt.Errorf("pots sum to %d, pot is %d: %w", total, g.Pot, ErrChipsNotConserved)
	}

	awarded := make(map[int]int)
	for _, pot := range pots {
		winners := potWinners(pot, hands)
		if len(winners) == 0 {
			return fmt.Errorf("pot of %d has no winner: %w", pot.Amount, ErrInvalidAction)
		}
		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for i, seatIdx := range winners {
			amount := share
			if i == 0 {
				// Odd chips go to the first winner in seat order, so
				// splits are deterministic.
				amount += remainder
			}
			awarded[seatIdx] += amount
		}
	}

	g.Results = nil
	for i := range g.Seats {
		if amount, ok := awarded[i]; ok && amount > 0 {
			g.Seats[i].Stack += amount
			g.Results = append(g.Results, Payout{
				Seat:     i,
				PlayerID: g.Seats[i].PlayerID,
				Amount:   amount,
			})
		}
	}

	g.Pot = 0
	g.Stage = Finished
	g.Current = -1
	return nil
}

// potWinners returns the eligible seats holding the strongest hand, in
// seat order.
func potWinners(pot Pot, hands map[int]evaluator.EvaluatedHand) []int {
	var winners []int
	var best evaluator.EvaluatedHand
	for _, seatIdx := range pot.Eligible {
		hand, ok := hands[seatIdx]
		if !ok {
			continue
		}
		if len(winners) == 0 {
			winners = []int{seatIdx}
			best = hand
			continue
		}
		switch hand.Compare(best) {
		case 1:
			winners = []int{seatIdx}
			best = hand
		case 0:
			winners = append(winners, seatIdx)
		}
	}
	return winners
}

package game

import "sort"

// Pot is one tranche of the chips in play: the main pot, or a side pot
// capped at an all-in level. Eligible lists the seats that can win it,
// in seat order.
type Pot struct {
	Amount   int
	Eligible []int
	Cap      int // per-seat contribution ceiling, 0 for the uncapped pot
}

// BuildPots partitions the hand's contributions into main and side
// pots. One pot is cut at each distinct all-in level, holding
// (level - previous) from every seat that contributed past the
// previous level; contributions above the highest level form the
// final uncapped pot. Folded seats' chips stay in as dead money but
// folded seats are never eligible.
func (g *Game) BuildPots() []Pot {
	levelSet := make(map[int]bool)
	for i := range g.Seats {
		seat := &g.Seats[i]
		if seat.Status == SeatAllIn && seat.HandBet > 0 {
			levelSet[seat.HandBet] = true
		}
	}
	levels := make([]int, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{Cap: level}
		for i := range g.Seats {
			seat := &g.Seats[i]
			contribution := min(seat.HandBet, level) - prev
			if contribution > 0 {
				pot.Amount += contribution
			}
			if seat.InHand() && seat.HandBet > prev {
				pot.Eligible = append(pot.Eligible, i)
			}
		}
		if pot.Amount > 0 && len(pot.Eligible) > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}

	remainder := Pot{}
	for i := range g.Seats {
		seat := &g.Seats[i]
		if seat.HandBet > prev {
			remainder.Amount += seat.HandBet - prev
			if seat.InHand() {
				remainder.Eligible = append(remainder.Eligible, i)
			}
		}
	}
	if remainder.Amount > 0 && len(remainder.Eligible) > 0 {
		pots = append(pots, remainder)
	}

	if len(pots) == 0 {
		// No contributions at all; a single empty pot keeps callers
		// uniform.
		pots = append(pots, Pot{Eligible: g.InHandSeats()})
	}
	return pots
}

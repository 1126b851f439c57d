package evaluator

import (
	"fmt"
	"sort"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/deck"
)

// Evaluate classifies exactly five cards into an EvaluatedHand.
func Evaluate(cards []deck.Card) (EvaluatedHand, error) {
	if len(cards) != 5 {
		return EvaluatedHand{}, fmt.Errorf("evaluate requires exactly 5 cards, got %d", len(cards))
	}

	ranks := make([]deck.Rank, 5)
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	straight, straightHigh := straightHigh(ranks)

	if flush && straight {
		if straightHigh == deck.Ace {
			return EvaluatedHand{Rank: RoyalFlush, Primary: deck.Ace}, nil
		}
		return EvaluatedHand{Rank: StraightFlush, Primary: straightHigh}, nil
	}

	// Group ranks by multiplicity. groups is sorted by count descending,
	// then rank descending, so groups[0] is the dominant group.
	type group struct {
		rank  deck.Rank
		count int
	}
	counts := make(map[deck.Rank]int)
	for _, r := range ranks {
		counts[r]++
	}
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	kickersAfter := func(exclude ...deck.Rank) [5]deck.Rank {
		var k [5]deck.Rank
		i := 0
	outer:
		for _, r := range ranks {
			for _, ex := range exclude {
				if r == ex {
					continue outer
				}
			}
			k[i] = r
			i++
		}
		return k
	}

	switch {
	case groups[0].count == 4:
		return EvaluatedHand{
			Rank:    FourOfAKind,
			Primary: groups[0].rank,
			Kickers: kickersAfter(groups[0].rank),
		}, nil

	case groups[0].count == 3 && groups[1].count == 2:
		// Highest trips first, then the pair. With five cards there is
		// exactly one of each.
		return EvaluatedHand{
			Rank:      FullHouse,
			Primary:   groups[0].rank,
			Secondary: groups[1].rank,
		}, nil

	case flush:
		return EvaluatedHand{
			Rank:    Flush,
			Primary: ranks[0],
			Kickers: kickersAfter(),
		}, nil

	case straight:
		return EvaluatedHand{Rank: Straight, Primary: straightHigh}, nil

	case groups[0].count == 3:
		return EvaluatedHand{
			Rank:    ThreeOfAKind,
			Primary: groups[0].rank,
			Kickers: kickersAfter(groups[0].rank),
		}, nil

	case groups[0].count == 2 && groups[1].count == 2:
		return EvaluatedHand{
			Rank:      TwoPair,
			Primary:   groups[0].rank,
			Secondary: groups[1].rank,
			Kickers:   kickersAfter(groups[0].rank, groups[1].rank),
		}, nil

	case groups[0].count == 2:
		return EvaluatedHand{
			Rank:    OnePair,
			Primary: groups[0].rank,
			Kickers: kickersAfter(groups[0].rank),
		}, nil

	default:
		return EvaluatedHand{
			Rank:    HighCard,
			Primary: ranks[0],
			Kickers: kickersAfter(),
		}, nil
	}
}

// straightHigh reports whether the descending-sorted ranks form a
// straight and, if so, its high card. A-5-4-3-2 ranks as a five-high
// straight.
func straightHigh(ranks []deck.Rank) (bool, deck.Rank) {
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return false, 0
		}
	}

	if ranks[0]-ranks[4] == 4 {
		return true, ranks[0]
	}

	// Wheel: ace plays low below the five.
	if ranks[0] == deck.Ace && ranks[1] == deck.Five && ranks[1]-ranks[4] == 3 {
		return true, deck.Five
	}

	return false, 0
}

// EvaluateBest returns the strongest five-card hand choosable from the
// given cards. Showdown hands pass seven cards (two hole plus five
// community) and scan all 21 five-card subsets.
func EvaluateBest(cards []deck.Card) (EvaluatedHand, error) {
	if len(cards) < 5 {
		return EvaluatedHand{}, fmt.Errorf("evaluate best requires at least 5 cards, got %d", len(cards))
	}
	if len(cards) == 5 {
		return Evaluate(cards)
	}

	var best EvaluatedHand
	first := true
	subset := make([]deck.Card, 5)

	var choose func(start, depth int) error
	choose = func(start, depth int) error {
		if depth == 5 {
			hand, err := Evaluate(subset)
			if err != nil {
				return err
			}
			if first || hand.Beats(best) {
				best = hand
				first = false
			}
			return nil
		}
		for i := start; i <= len(cards)-(5-depth); i++ {
			subset[depth] = cards[i]
			if err := choose(i+1, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := choose(0, 0); err != nil {
		return EvaluatedHand{}, err
	}
	return best, nil
}

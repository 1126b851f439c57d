package evaluator

import (
	"fmt"
	"strings"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/deck"
)

// HandRank represents the category of a poker hand, ordered weakest to
// strongest so that categories compare directly.
type HandRank int

const (
	HighCard HandRank = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (r HandRank) String() string {
	switch r {
	case HighCard:
		return "high card"
	case OnePair:
		return "pair"
	case TwoPair:
		return "two pair"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	case RoyalFlush:
		return "royal flush"
	default:
		return "unknown"
	}
}

// EvaluatedHand is the comparable strength of a five-card hand. Primary
// carries the defining rank (pair rank, trips rank, straight high card),
// Secondary the second group where one exists (the pair of a full house,
// the low pair of two pair). Kickers hold the remaining ranks in
// descending order, zero-padded.
type EvaluatedHand struct {
	Rank      HandRank
	Primary   deck.Rank
	Secondary deck.Rank
	Kickers   [5]deck.Rank
}

// Compare returns -1 if h is weaker than other, 0 if equal strength and
// 1 if stronger. Equal strength means the hands tie and split.
func (h EvaluatedHand) Compare(other EvaluatedHand) int {
	if h.Rank != other.Rank {
		if h.Rank < other.Rank {
			return -1
		}
		return 1
	}
	if h.Primary != other.Primary {
		if h.Primary < other.Primary {
			return -1
		}
		return 1
	}
	if h.Secondary != other.Secondary {
		if h.Secondary < other.Secondary {
			return -1
		}
		return 1
	}
	for i := range h.Kickers {
		if h.Kickers[i] != other.Kickers[i] {
			if h.Kickers[i] < other.Kickers[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Beats returns true if h is strictly stronger than other.
func (h EvaluatedHand) Beats(other EvaluatedHand) bool {
	return h.Compare(other) > 0
}

func (h EvaluatedHand) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s", h.Rank, h.Primary)
	if h.Secondary != 0 {
		fmt.Fprintf(&b, "/%s", h.Secondary)
	}
	b.WriteString(")")
	return b.String()
}

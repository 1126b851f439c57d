package deck

import "fmt"

// Deck dimensions for a standard 52-card deck.
const (
	Size           = 52
	HoleCards      = 2
	CommunityCards = 5
)

// Suit represents a card suit. The declaration order matches the ledger
// index encoding: hearts occupy indices 0-12, diamonds 13-25, clubs 26-38
// and spades 39-51.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// FromIndex decodes a card from its 0-51 ledger index.
func FromIndex(index int) (Card, error) {
	if index < 0 || index >= Size {
		return Card{}, fmt.Errorf("card index %d out of range [0,%d)", index, Size)
	}
	return Card{
		Suit: Suit(index / 13),
		Rank: Rank(index%13) + Two,
	}, nil
}

// Index returns the 0-51 ledger index of the card.
func (c Card) Index() int {
	return int(c.Suit)*13 + int(c.Rank) - int(Two)
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Value returns the numeric value of the card for comparison.
// Aces are high (14), but rank as low (1) inside a wheel straight.
func (c Card) Value() int {
	return int(c.Rank)
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

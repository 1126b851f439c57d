package deck

import "testing"

func TestCardIndexRoundTrip(t *testing.T) {
	t.Parallel()

	seen := make(map[int]bool)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(suit, rank)
			idx := card.Index()
			if idx < 0 || idx >= Size {
				t.Fatalf("%s: index %d out of range", card, idx)
			}
			if seen[idx] {
				t.Fatalf("%s: duplicate index %d", card, idx)
			}
			seen[idx] = true

			decoded, err := FromIndex(idx)
			if err != nil {
				t.Fatalf("FromIndex(%d): %v", idx, err)
			}
			if decoded != card {
				t.Errorf("FromIndex(%d) = %s, want %s", idx, decoded, card)
			}
		}
	}
	if len(seen) != Size {
		t.Errorf("expected %d distinct indices, got %d", Size, len(seen))
	}
}

func TestCardIndexEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		card  Card
		index int
	}{
		{NewCard(Hearts, Two), 0},
		{NewCard(Hearts, Ace), 12},
		{NewCard(Diamonds, Two), 13},
		{NewCard(Clubs, Two), 26},
		{NewCard(Spades, Two), 39},
		{NewCard(Spades, Ace), 51},
	}

	for _, tc := range tests {
		if got := tc.card.Index(); got != tc.index {
			t.Errorf("%s: index = %d, want %d", tc.card, got, tc.index)
		}
	}
}

func TestFromIndexOutOfRange(t *testing.T) {
	t.Parallel()

	for _, idx := range []int{-1, 52, 100} {
		if _, err := FromIndex(idx); err == nil {
			t.Errorf("FromIndex(%d): expected error", idx)
		}
	}
}

func TestCardString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		card Card
		want string
	}{
		{NewCard(Spades, Ace), "A♠"},
		{NewCard(Hearts, Ten), "T♥"},
		{NewCard(Diamonds, Two), "2♦"},
		{NewCard(Clubs, King), "K♣"},
	}

	for _, tc := range tests {
		if got := tc.card.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

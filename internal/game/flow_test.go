package game

import (
	"errors"
	"testing"
	"time"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/mpc"
)

func TestAdvanceStageRequiresCompleteRound(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000, 1000)

	if err := g.AdvanceStage([]int{0, 1, 2}); !errors.Is(err, ErrRoundNotComplete) {
		t.Errorf("advance mid-round: err = %v, want ErrRoundNotComplete", err)
	}
}

func TestAdvanceStageCardCounts(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000, 1000)
	mustApply(t, g, 0, Call, 0)
	mustApply(t, g, 1, Call, 0)
	mustApply(t, g, 2, Check, 0)

	// The flop takes exactly three cards.
	if err := g.AdvanceStage([]int{0}); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("flop with one card: err = %v, want ErrInvalidStage", err)
	}
	if err := g.AdvanceStage([]int{0, 1, 2}); err != nil {
		t.Fatalf("flop: %v", err)
	}
	if g.Stage != Flop || g.CommunityCount != 3 {
		t.Fatalf("stage = %s community = %d, want flop with 3", g.Stage, g.CommunityCount)
	}

	// Bets were collected into the pot.
	if g.Pot != 60 {
		t.Errorf("pot = %d, want 60", g.Pot)
	}
	for i := range g.Seats {
		if g.Seats[i].RoundBet != 0 {
			t.Errorf("seat %d round bet = %d after collection", i, g.Seats[i].RoundBet)
		}
	}
}

func TestRiverAdvancesToShowdown(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000, 1000)
	checkStreet := func() {
		t.Helper()
		for g.Current >= 0 {
			seat := g.Current
			if g.CurrentBet > g.Seats[seat].RoundBet {
				mustApply(t, g, seat, Call, 0)
			} else {
				mustApply(t, g, seat, Check, 0)
			}
		}
	}

	checkStreet()
	advance(t, g)
	checkStreet()
	advance(t, g)
	checkStreet()
	advance(t, g)
	checkStreet()

	if err := g.AdvanceStage(nil); err != nil {
		t.Fatalf("advance to showdown: %v", err)
	}
	if g.Stage != Showdown {
		t.Errorf("stage = %s, want showdown", g.Stage)
	}
	if g.CommunityCount != 5 {
		t.Errorf("community = %d, want 5", g.CommunityCount)
	}
	if g.Current != -1 {
		t.Errorf("current = %d at showdown, want -1", g.Current)
	}
}

func TestTimeoutFoldsStalledSeat(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000, 1000)

	// Too early.
	early := t0.Add(30 * time.Second)
	if _, err := g.ApplyTimeout(early); !errors.Is(err, ErrTimeoutNotReached) {
		t.Errorf("early timeout: err = %v, want ErrTimeoutNotReached", err)
	}

	late := t0.Add(g.Config.TurnTimeout)
	seat, err := g.ApplyTimeout(late)
	if err != nil {
		t.Fatalf("ApplyTimeout: %v", err)
	}
	if seat != 0 {
		t.Errorf("timed out seat = %d, want 0", seat)
	}
	if g.Seats[0].Status != SeatFolded {
		t.Errorf("seat 0 status = %s, want folded", g.Seats[0].Status)
	}
	if g.Current != 1 {
		t.Errorf("current = %d, want 1", g.Current)
	}
}

func TestTimeoutClockResetsOnAction(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000, 1000)
	mid := t0.Add(45 * time.Second)
	if err := g.Apply(0, Call, 0, mid); err != nil {
		t.Fatalf("call: %v", err)
	}

	// Seat 1's clock starts at the call, not at the hand start.
	if _, err := g.ApplyTimeout(t0.Add(70 * time.Second)); !errors.Is(err, ErrTimeoutNotReached) {
		t.Errorf("err = %v, want ErrTimeoutNotReached", err)
	}
	if _, err := g.ApplyTimeout(mid.Add(g.Config.TurnTimeout)); err != nil {
		t.Errorf("timeout after full wait: %v", err)
	}
}

func TestAbortHandRefundsContributions(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 800, 600)
	mustApply(t, g, 0, Raise, 100)
	mustApply(t, g, 1, Call, 0)

	if err := g.AbortHand(); err != nil {
		t.Fatalf("AbortHand: %v", err)
	}

	if g.Stage != Finished {
		t.Errorf("stage = %s, want finished", g.Stage)
	}
	for i, want := range []int{1000, 800, 600} {
		if g.Seats[i].Stack != want {
			t.Errorf("seat %d stack = %d, want %d", i, g.Seats[i].Stack, want)
		}
	}
	if g.Pot != 0 {
		t.Errorf("pot = %d, want 0", g.Pot)
	}
}

func TestNewHandRotatesDealer(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000, 1000)
	firstDealer := g.Dealer

	mustApply(t, g, 0, Fold, 0)
	mustApply(t, g, 1, Fold, 0)

	if err := g.NewHand(); err != nil {
		t.Fatalf("NewHand: %v", err)
	}
	if g.Stage != Waiting {
		t.Fatalf("stage = %s, want waiting", g.Stage)
	}
	if g.Deck.Active() {
		t.Error("deck session survived into the next hand")
	}

	hole := make(map[int][2]mpc.EncryptedCard)
	for _, idx := range g.FundedSeats() {
		hole[idx] = [2]mpc.EncryptedCard{}
	}
	sess := mpc.Session{ID: "sess2", Cursor: len(hole) * 2}
	if err := g.BeginHand(sess, hole, t0); err != nil {
		t.Fatalf("BeginHand: %v", err)
	}

	if g.Dealer != (firstDealer+1)%3 {
		t.Errorf("dealer = %d, want %d", g.Dealer, (firstDealer+1)%3)
	}
	if g.HandNum != 2 {
		t.Errorf("hand number = %d, want 2", g.HandNum)
	}
}

func TestNewHandRequiresFinished(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000)
	if err := g.NewHand(); !errors.Is(err, ErrGameNotFinished) {
		t.Errorf("err = %v, want ErrGameNotFinished", err)
	}
}

func TestBeginHandRequiresPlayersAndDeck(t *testing.T) {
	t.Parallel()

	g, err := New("g1", testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Join("alice", 1000); err != nil {
		t.Fatalf("Join: %v", err)
	}

	hole := map[int][2]mpc.EncryptedCard{0: {}}
	err = g.BeginHand(mpc.Session{ID: "s", Cursor: 2}, hole, t0)
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("solo hand: err = %v, want ErrNotEnoughPlayers", err)
	}

	if _, err := g.Join("bob", 1000); err != nil {
		t.Fatalf("Join: %v", err)
	}
	err = g.BeginHand(mpc.Session{}, hole, t0)
	if !errors.Is(err, ErrDeckNotInitialized) {
		t.Errorf("no deck: err = %v, want ErrDeckNotInitialized", err)
	}
}

func TestJoinValidation(t *testing.T) {
	t.Parallel()

	g, err := New("g1", testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := g.Join("alice", 50); !errors.Is(err, ErrBuyInTooLow) {
		t.Errorf("low buy-in: err = %v, want ErrBuyInTooLow", err)
	}
	if _, err := g.Join("alice", 50000); !errors.Is(err, ErrBuyInTooHigh) {
		t.Errorf("high buy-in: err = %v, want ErrBuyInTooHigh", err)
	}

	if _, err := g.Join("alice", 1000); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := g.Join("alice", 1000); !errors.Is(err, ErrPlayerAlreadyInGame) {
		t.Errorf("rejoin: err = %v, want ErrPlayerAlreadyInGame", err)
	}

	for _, name := range []string{"bob", "carol", "dave", "erin", "frank"} {
		if _, err := g.Join(name, 1000); err != nil {
			t.Fatalf("Join %s: %v", name, err)
		}
	}
	if _, err := g.Join("grace", 1000); !errors.Is(err, ErrGameFull) {
		t.Errorf("full table: err = %v, want ErrGameFull", err)
	}
}

func TestLeaveOnlyBetweenHands(t *testing.T) {
	t.Parallel()

	g := startedGame(t, 1000, 1000)

	if _, err := g.Leave("alice"); !errors.Is(err, ErrCannotLeaveDuringHand) {
		t.Errorf("leave mid-hand: err = %v, want ErrCannotLeaveDuringHand", err)
	}

	mustApply(t, g, 0, Fold, 0)
	stack, err := g.Leave("alice")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if stack != 990 {
		t.Errorf("cash-out = %d, want 990", stack)
	}
	if g.SeatOf("alice") >= 0 {
		t.Error("alice still seated after leaving")
	}

	if _, err := g.Leave("nobody"); !errors.Is(err, ErrPlayerNotInGame) {
		t.Errorf("unknown player: err = %v, want ErrPlayerNotInGame", err)
	}
}

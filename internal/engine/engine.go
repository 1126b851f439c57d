package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/deck"
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/evaluator"
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/game"
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/mpc"
)

// Engine executes game operations against the ledger. Each operation
// is a single request: it validates fully, applies atomically through
// Ledger.Update, and holds a per-game lock so games progress strictly
// sequentially. Card material only ever moves through the card-secrecy
// backend.
type Engine struct {
	ledger  Ledger
	escrow  Escrow
	secrecy mpc.Backend
	logger  *log.Logger
	clock   quartz.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires an engine. The secrecy backend decides whether games run
// against a real MPC cluster or the in-process mock; the engine never
// asks which it got.
func New(ledger Ledger, escrow Escrow, secrecy mpc.Backend, logger *log.Logger, clock quartz.Clock) *Engine {
	return &Engine{
		ledger:  ledger,
		escrow:  escrow,
		secrecy: secrecy,
		logger:  logger.WithPrefix("engine"),
		clock:   clock,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lock serializes all operations on one game.
func (e *Engine) lock(gameID string) func() {
	e.mu.Lock()
	l, ok := e.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[gameID] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// updateConserving commits a mutation that must not change the chip
// total. Buy-ins and cash-outs go through the ledger directly.
func (e *Engine) updateConserving(ctx context.Context, gameID string, fn func(*game.Game) error) (*game.Game, error) {
	return e.ledger.Update(ctx, gameID, func(g *game.Game) error {
		before := g.TotalChips()
		if err := fn(g); err != nil {
			return err
		}
		if got := g.TotalChips(); got != before {
			return fmt.Errorf("total %d became %d: %w", before, got, game.ErrChipsNotConserved)
		}
		return nil
	})
}

// CreateGame records a new table on the ledger.
func (e *Engine) CreateGame(ctx context.Context, cfg game.Config) (*game.Game, error) {
	g, err := game.New(uuid.NewString(), cfg)
	if err != nil {
		return nil, err
	}
	if err := e.ledger.Append(ctx, g); err != nil {
		return nil, err
	}
	e.logger.Info("game created", "game", g.ID,
		"blinds", fmt.Sprintf("%d/%d", cfg.SmallBlind, cfg.BigBlind),
		"maxPlayers", cfg.MaxPlayers)
	return g.Clone(), nil
}

// Game returns the current ledger state of a game.
func (e *Engine) Game(ctx context.Context, gameID string) (*game.Game, error) {
	return e.ledger.Get(ctx, gameID)
}

// Join buys a player into a game, debiting the buy-in from escrow.
func (e *Engine) Join(ctx context.Context, gameID, playerID string, buyIn int) (int, error) {
	defer e.lock(gameID)()

	// Dry-run the seating on a snapshot before touching the account.
	snapshot, err := e.ledger.Get(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if _, err := snapshot.Join(playerID, buyIn); err != nil {
		return 0, err
	}

	if err := e.escrow.Debit(ctx, playerID, buyIn); err != nil {
		return 0, err
	}

	var seat int
	_, err = e.ledger.Update(ctx, gameID, func(g *game.Game) error {
		idx, joinErr := g.Join(playerID, buyIn)
		seat = idx
		return joinErr
	})
	if err != nil {
		// Seating failed after the debit; the buy-in goes back.
		if refundErr := e.escrow.Credit(ctx, playerID, buyIn); refundErr != nil {
			e.logger.Error("refund failed", "game", gameID, "player", playerID, "error", refundErr)
		}
		return 0, err
	}

	e.logger.Info("player joined", "game", gameID, "player", playerID, "seat", seat, "buyIn", buyIn)
	return seat, nil
}

// Leave removes a player between hands and credits the stack back.
func (e *Engine) Leave(ctx context.Context, gameID, playerID string) error {
	defer e.lock(gameID)()

	var stack int
	_, err := e.ledger.Update(ctx, gameID, func(g *game.Game) error {
		var err error
		stack, err = g.Leave(playerID)
		return err
	})
	if err != nil {
		return err
	}
	if err := e.escrow.Credit(ctx, playerID, stack); err != nil {
		return err
	}

	e.logger.Info("player left", "game", gameID, "player", playerID, "cashOut", stack)
	return nil
}

// StartHand shuffles a fresh deck through the MPC network and deals
// hole cards. Entropy carries one contribution per funded player; the
// shuffle refuses anything else.
func (e *Engine) StartHand(ctx context.Context, gameID string, entropy map[string][32]byte) error {
	defer e.lock(gameID)()

	snapshot, err := e.ledger.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if snapshot.Stage != game.Waiting {
		return fmt.Errorf("start hand in stage %s: %w", snapshot.Stage, game.ErrGameAlreadyStarted)
	}
	funded := snapshot.FundedSeats()
	if len(funded) < snapshot.Config.MinPlayers {
		return game.ErrNotEnoughPlayers
	}

	players := make([]string, len(funded))
	contributions := make([][32]byte, len(funded))
	for i, idx := range funded {
		playerID := snapshot.Seats[idx].PlayerID
		contribution, ok := entropy[playerID]
		if !ok {
			return fmt.Errorf("no entropy from %s: %w", playerID, mpc.ErrEntropyMismatch)
		}
		players[i] = playerID
		contributions[i] = contribution
	}
	if len(entropy) != len(funded) {
		return fmt.Errorf("%d contributions for %d players: %w", len(entropy), len(funded), mpc.ErrEntropyMismatch)
	}

	res, err := e.secrecy.Shuffle(ctx, mpc.ShuffleRequest{
		GameID:  gameID,
		Players: players,
		Entropy: contributions,
	})
	if err != nil {
		return fmt.Errorf("shuffle: %w", err)
	}
	if !e.secrecy.VerifyShuffle(res.SessionID, res.Commitment, res.Proof) {
		e.logger.Warn("shuffle verification failed", "game", gameID, "session", res.SessionID)
		return fmt.Errorf("shuffle verification failed: %w", mpc.ErrProtocolFailed)
	}

	// Two hole cards per funded seat, in seat order.
	sess := mpc.NewSession(res)
	hole := make(map[int][2]mpc.EncryptedCard, len(funded))
	for _, idx := range funded {
		var cards [2]mpc.EncryptedCard
		for j := 0; j < 2; j++ {
			pos, err := sess.Next()
			if err != nil {
				return fmt.Errorf("deal: %w", err)
			}
			card, err := e.secrecy.Deal(ctx, mpc.DealRequest{
				SessionID: sess.ID,
				Position:  pos,
				Owner:     snapshot.Seats[idx].PlayerID,
			})
			if err != nil {
				return fmt.Errorf("deal seat %d: %w", idx, err)
			}
			cards[j] = *card
		}
		hole[idx] = cards
	}

	committed, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		return g.BeginHand(sess, hole, e.clock.Now())
	})
	if err != nil {
		return err
	}

	e.logger.Info("hand started", "game", gameID, "hand", committed.HandNum,
		"session", sess.ID, "players", len(funded), "dealer", committed.Dealer)
	return nil
}

// Action applies one betting action for a player.
func (e *Engine) Action(ctx context.Context, gameID, playerID string, action game.Action, amount int) (*game.Game, error) {
	defer e.lock(gameID)()

	committed, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		seat := g.SeatOf(playerID)
		if seat < 0 {
			return game.ErrPlayerNotInGame
		}
		return g.Apply(seat, action, amount, e.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("action applied", "game", gameID, "player", playerID,
		"action", action, "amount", amount, "stage", committed.Stage,
		"pot", committed.Pot, "currentBet", committed.CurrentBet)
	return committed, nil
}

// HandleTimeout folds the seat due to act once its turn clock expired.
// The deadline check uses the injected clock against the last recorded
// action; nothing fires on its own.
func (e *Engine) HandleTimeout(ctx context.Context, gameID string) (int, error) {
	defer e.lock(gameID)()

	var seat int
	_, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		var err error
		seat, err = g.ApplyTimeout(e.clock.Now())
		return err
	})
	if err != nil {
		return 0, err
	}

	e.logger.Info("seat folded on timeout", "game", gameID, "seat", seat)
	return seat, nil
}

// AdvanceStage closes a completed betting round, revealing the next
// street's community cards through the network. A protocol failure
// aborts the hand and refunds all contributions; no card is ever
// substituted.
func (e *Engine) AdvanceStage(ctx context.Context, gameID string) (*game.Game, error) {
	defer e.lock(gameID)()

	snapshot, err := e.ledger.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !snapshot.Stage.Betting() {
		return nil, fmt.Errorf("advance from stage %s: %w", snapshot.Stage, game.ErrInvalidStage)
	}
	if !snapshot.RoundComplete() {
		return nil, game.ErrRoundNotComplete
	}

	var want int
	switch snapshot.Stage {
	case game.PreFlop:
		want = 3
	case game.Flop, game.Turn:
		want = 1
	case game.River:
		want = 0
	}

	var indices []int
	var positions []int
	if want > 0 {
		sess := snapshot.Deck
		if err := sess.Burn(); err != nil {
			return nil, err
		}
		cards := make([]mpc.EncryptedCard, 0, want)
		for i := 0; i < want; i++ {
			pos, err := sess.Next()
			if err != nil {
				return nil, err
			}
			card, err := e.secrecy.Deal(ctx, mpc.DealRequest{
				SessionID: sess.ID,
				Position:  pos,
				Owner:     mpc.BoardOwner,
			})
			if err != nil {
				return nil, e.abortHand(ctx, gameID, fmt.Errorf("deal community: %w", err))
			}
			cards = append(cards, *card)
			positions = append(positions, pos)
		}

		reveal, err := e.secrecy.Reveal(ctx, mpc.RevealRequest{
			SessionID: sess.ID,
			Mode:      mpc.RevealQuorum,
			Requester: mpc.BoardOwner,
			Cards:     cards,
		})
		if err != nil {
			return nil, e.abortHand(ctx, gameID, fmt.Errorf("reveal community: %w", err))
		}
		if !e.secrecy.VerifyReveal(sess.ID, reveal.Indices, reveal.Artifact) {
			e.logger.Warn("community reveal verification failed", "game", gameID, "session", sess.ID)
			return nil, e.abortHand(ctx, gameID, fmt.Errorf("reveal verification failed: %w", mpc.ErrProtocolFailed))
		}
		indices = reveal.Indices
	}

	committed, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		if want > 0 {
			if err := g.Deck.Burn(); err != nil {
				return err
			}
			for i := 0; i < want; i++ {
				pos, err := g.Deck.Next()
				if err != nil {
					return err
				}
				if pos != positions[i] {
					return fmt.Errorf("deck cursor moved during reveal: %w", mpc.ErrProtocolFailed)
				}
			}
		}
		return g.AdvanceStage(indices)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("stage advanced", "game", gameID, "stage", committed.Stage,
		"community", committed.CommunityCount, "pot", committed.Pot)
	return committed, nil
}

// RevealHole decrypts a player's own hole cards. Only the owner can
// ask; the table state does not change.
func (e *Engine) RevealHole(ctx context.Context, gameID, playerID string) ([]deck.Card, error) {
	snapshot, err := e.ledger.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	seat := snapshot.SeatOf(playerID)
	if seat < 0 {
		return nil, game.ErrPlayerNotInGame
	}
	if !snapshot.Seats[seat].HasCards {
		return nil, game.ErrDeckNotInitialized
	}

	reveal, err := e.secrecy.Reveal(ctx, mpc.RevealRequest{
		SessionID: snapshot.Deck.ID,
		Mode:      mpc.RevealPrivate,
		Requester: playerID,
		Cards:     snapshot.Seats[seat].HoleCards[:],
	})
	if err != nil {
		return nil, err
	}
	return reveal.Cards()
}

// Muck concedes at showdown without revealing.
func (e *Engine) Muck(ctx context.Context, gameID, playerID string) error {
	defer e.lock(gameID)()

	_, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		return g.Muck(playerID)
	})
	if err == nil {
		e.logger.Debug("player mucked", "game", gameID, "player", playerID)
	}
	return err
}

// ExecuteShowdown reveals the contenders' hole cards through the
// network, evaluates best hands and distributes every pot.
func (e *Engine) ExecuteShowdown(ctx context.Context, gameID string) (*game.Game, error) {
	defer e.lock(gameID)()

	snapshot, err := e.ledger.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if snapshot.Stage != game.Showdown {
		return nil, fmt.Errorf("showdown in stage %s: %w", snapshot.Stage, game.ErrInvalidStage)
	}

	board := make([]deck.Card, 0, snapshot.CommunityCount)
	for i := 0; i < snapshot.CommunityCount; i++ {
		card, err := deck.FromIndex(snapshot.Community[i])
		if err != nil {
			return nil, err
		}
		board = append(board, card)
	}

	contenders := snapshot.InHandSeats()
	cards := make([]mpc.EncryptedCard, 0, 2*len(contenders))
	for _, idx := range contenders {
		cards = append(cards, snapshot.Seats[idx].HoleCards[:]...)
	}

	reveal, err := e.secrecy.Reveal(ctx, mpc.RevealRequest{
		SessionID: snapshot.Deck.ID,
		Mode:      mpc.RevealQuorum,
		Cards:     cards,
	})
	if err != nil {
		return nil, e.abortHand(ctx, gameID, fmt.Errorf("showdown reveal: %w", err))
	}
	if !e.secrecy.VerifyReveal(snapshot.Deck.ID, reveal.Indices, reveal.Artifact) {
		e.logger.Warn("showdown reveal verification failed", "game", gameID, "session", snapshot.Deck.ID)
		return nil, e.abortHand(ctx, gameID, fmt.Errorf("reveal verification failed: %w", mpc.ErrProtocolFailed))
	}
	revealed, err := reveal.Cards()
	if err != nil {
		return nil, e.abortHand(ctx, gameID, err)
	}

	hands := make(map[int]evaluator.EvaluatedHand, len(contenders))
	for i, idx := range contenders {
		seven := append(append([]deck.Card{}, board...), revealed[2*i], revealed[2*i+1])
		best, err := evaluator.EvaluateBest(seven)
		if err != nil {
			return nil, err
		}
		hands[idx] = best
		e.logger.Debug("showdown hand", "game", gameID, "seat", idx,
			"player", snapshot.Seats[idx].PlayerID, "hand", best)
	}

	committed, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		return g.SettleShowdown(hands)
	})
	if err != nil {
		return nil, err
	}

	for _, payout := range committed.Results {
		e.logger.Info("pot awarded", "game", gameID, "seat", payout.Seat,
			"player", payout.PlayerID, "amount", payout.Amount)
	}
	return committed, nil
}

// NewHand cycles a finished game back to Waiting.
func (e *Engine) NewHand(ctx context.Context, gameID string) error {
	defer e.lock(gameID)()

	_, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		return g.NewHand()
	})
	return err
}

// EndGame cashes every seat out and closes the ledger record. Only
// possible between hands.
func (e *Engine) EndGame(ctx context.Context, gameID string) error {
	defer e.lock(gameID)()

	type cashOut struct {
		playerID string
		amount   int
	}
	var outs []cashOut
	_, err := e.ledger.Update(ctx, gameID, func(g *game.Game) error {
		if g.Stage != game.Waiting && g.Stage != game.Finished {
			return fmt.Errorf("end game in stage %s: %w", g.Stage, game.ErrInvalidStage)
		}
		for i := range g.Seats {
			if g.Seats[i].Occupied() {
				outs = append(outs, cashOut{g.Seats[i].PlayerID, g.Seats[i].Stack})
				g.Seats[i] = game.Seat{}
			}
		}
		g.Stage = game.Finished
		return nil
	})
	if err != nil {
		return err
	}

	for _, out := range outs {
		if out.amount > 0 {
			if err := e.escrow.Credit(ctx, out.playerID, out.amount); err != nil {
				return err
			}
		}
	}
	if err := e.ledger.Close(ctx, gameID); err != nil {
		return err
	}

	e.logger.Info("game ended", "game", gameID, "cashOuts", len(outs))
	return nil
}

// abortHand cancels the hand in flight after a protocol failure,
// refunding all contributions, and returns the cause.
func (e *Engine) abortHand(ctx context.Context, gameID string, cause error) error {
	_, err := e.updateConserving(ctx, gameID, func(g *game.Game) error {
		return g.AbortHand()
	})
	if err != nil {
		e.logger.Error("abort failed", "game", gameID, "error", err, "cause", cause)
		return fmt.Errorf("abort after %v: %w", cause, err)
	}
	e.logger.Warn("hand aborted", "game", gameID, "cause", cause)
	return fmt.Errorf("hand aborted: %w", cause)
}

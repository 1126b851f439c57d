package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/game"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameClosed   = errors.New("game record closed")
)

// Ledger is the append-only home of game state. Update applies a
// mutation atomically: the function runs on a copy and only a nil
// return commits, so a failed action never leaves partial state
// behind.
type Ledger interface {
	Append(ctx context.Context, g *game.Game) error
	Get(ctx context.Context, id string) (*game.Game, error)
	Update(ctx context.Context, id string, fn func(*game.Game) error) (*game.Game, error)
	Close(ctx context.Context, id string) error
}

// MemoryLedger keeps every committed version of each game in order,
// mirroring the append-only host ledger it stands in for.
type MemoryLedger struct {
	mu     sync.RWMutex
	games  map[string][]*game.Game
	closed map[string]bool
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		games:  make(map[string][]*game.Game),
		closed: make(map[string]bool),
	}
}

func (l *MemoryLedger) Append(_ context.Context, g *game.Game) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.games[g.ID]; ok {
		return errors.New("game already recorded")
	}
	l.games[g.ID] = []*game.Game{g.Clone()}
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, id string) (*game.Game, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	versions, ok := l.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return versions[len(versions)-1].Clone(), nil
}

func (l *MemoryLedger) Update(_ context.Context, id string, fn func(*game.Game) error) (*game.Game, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	versions, ok := l.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	if l.closed[id] {
		return nil, ErrGameClosed
	}

	next := versions[len(versions)-1].Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	l.games[id] = append(versions, next)
	return next.Clone(), nil
}

func (l *MemoryLedger) Close(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.games[id]; !ok {
		return ErrGameNotFound
	}
	l.closed[id] = true
	return nil
}

// Versions returns how many states were committed for a game.
func (l *MemoryLedger) Versions(id string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.games[id])
}

package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/game"
)

// Escrow moves chips between player accounts and tables. Buy-ins debit
// the account before a seat is taken; cash-outs credit it after the
// seat is released. Token transfer mechanics live behind this
// interface, outside the rules engine.
type Escrow interface {
	Debit(ctx context.Context, playerID string, amount int) error
	Credit(ctx context.Context, playerID string, amount int) error
	Balance(ctx context.Context, playerID string) (int, error)
}

// MemoryEscrow is an in-process account book for tests and local play.
type MemoryEscrow struct {
	mu       sync.Mutex
	balances map[string]int
}

// NewMemoryEscrow creates an escrow with no funded accounts.
func NewMemoryEscrow() *MemoryEscrow {
	return &MemoryEscrow{balances: make(map[string]int)}
}

// Deposit funds an account.
func (e *MemoryEscrow) Deposit(playerID string, amount int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[playerID] += amount
}

func (e *MemoryEscrow) Debit(_ context.Context, playerID string, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.balances[playerID] < amount {
		return fmt.Errorf("debit %d from %s with balance %d: %w",
			amount, playerID, e.balances[playerID], game.ErrInsufficientBalance)
	}
	e.balances[playerID] -= amount
	return nil
}

func (e *MemoryEscrow) Credit(_ context.Context, playerID string, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[playerID] += amount
	return nil
}

func (e *MemoryEscrow) Balance(_ context.Context, playerID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balances[playerID], nil
}

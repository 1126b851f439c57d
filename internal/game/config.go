package game

import (
	"fmt"
	"time"
)

// MaxSeats is the seat arena capacity. Tables may be configured
// smaller, never larger.
const MaxSeats = 6

// Config carries the table rule parameters. Every game gets its own
// copy at creation; nothing here is a process-wide constant.
type Config struct {
	SmallBlind         int
	BigBlind           int
	MinBuyIn           int
	MaxBuyIn           int
	MinPlayers         int
	MaxPlayers         int
	TurnTimeout        time.Duration
	MinRaiseMultiplier int
}

// DefaultConfig returns the standard cash table rules.
func DefaultConfig() Config {
	return Config{
		SmallBlind:         10,
		BigBlind:           20,
		MinBuyIn:           1000,
		MaxBuyIn:           10000,
		MinPlayers:         2,
		MaxPlayers:         MaxSeats,
		TurnTimeout:        60 * time.Second,
		MinRaiseMultiplier: 2,
	}
}

// Validate checks the rule parameters for internal consistency.
func (c Config) Validate() error {
	if c.SmallBlind <= 0 {
		return fmt.Errorf("%w: small blind must be positive", ErrInvalidConfig)
	}
	if c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("%w: big blind must exceed small blind", ErrInvalidConfig)
	}
	if c.MinBuyIn < c.BigBlind {
		return fmt.Errorf("%w: minimum buy-in must cover the big blind", ErrInvalidConfig)
	}
	if c.MaxBuyIn < c.MinBuyIn {
		return fmt.Errorf("%w: maximum buy-in below minimum", ErrInvalidConfig)
	}
	if c.MinPlayers < 2 {
		return fmt.Errorf("%w: at least two players required", ErrInvalidConfig)
	}
	if c.MaxPlayers < c.MinPlayers || c.MaxPlayers > MaxSeats {
		return fmt.Errorf("%w: max players must be between %d and %d", ErrInvalidConfig, c.MinPlayers, MaxSeats)
	}
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("%w: turn timeout must be positive", ErrInvalidConfig)
	}
	if c.MinRaiseMultiplier < 2 {
		return fmt.Errorf("%w: min raise multiplier must be at least 2", ErrInvalidConfig)
	}
	return nil
}

package game

import "errors"

// Validation failures are sentinel errors so callers can branch with
// errors.Is. Every action validates fully against these before any
// state is touched.
var (
	ErrGameFull              = errors.New("game is full")
	ErrNotEnoughPlayers      = errors.New("not enough players")
	ErrGameAlreadyStarted    = errors.New("game already started")
	ErrGameNotFinished       = errors.New("game not finished")
	ErrInvalidStage          = errors.New("invalid game stage for this action")
	ErrPlayerNotInGame       = errors.New("player not in game")
	ErrPlayerAlreadyInGame   = errors.New("player already in game")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrBuyInTooLow           = errors.New("buy-in below table minimum")
	ErrBuyInTooHigh          = errors.New("buy-in above table maximum")
	ErrInvalidBetAmount      = errors.New("invalid bet amount")
	ErrNotPlayerTurn         = errors.New("not player's turn")
	ErrInvalidAction         = errors.New("invalid action")
	ErrInsufficientChips     = errors.New("insufficient chips")
	ErrCannotLeaveDuringHand = errors.New("cannot leave during a hand")
	ErrDeckNotInitialized    = errors.New("deck not initialized")
	ErrInvalidConfig         = errors.New("invalid game configuration")
	ErrTimeoutNotReached     = errors.New("turn timeout not reached")
	ErrRoundNotComplete      = errors.New("betting round not complete")
	ErrChipsNotConserved     = errors.New("chip total changed during action")
)

package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/config"
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/engine"
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/game"
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/mpc"
)

var CLI struct {
	Config   string `short:"c" default:"arcium-poker.hcl" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Table    string `short:"t" default:"main" help:"Table to run"`
	Hands    int    `short:"n" default:"10" help:"Number of hands to play"`
	Players  int    `short:"p" default:"3" help:"Number of players to seat"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}
	if CLI.LogLevel != "" {
		cfg.Service.LogLevel = CLI.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Service.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("table run failed", "error", err)
		ctx.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	table := cfg.GetTableByName(CLI.Table)
	if table == nil {
		return fmt.Errorf("table %q not configured", CLI.Table)
	}

	clock := quartz.NewReal()
	secrecy, err := buildSecrecy(cfg, logger, clock)
	if err != nil {
		return err
	}

	ledger := engine.NewMemoryLedger()
	escrow := engine.NewMemoryEscrow()
	eng := engine.New(ledger, escrow, secrecy, logger, clock)

	ctx := context.Background()
	rules := table.GameConfig()
	if CLI.Players < rules.MinPlayers || CLI.Players > rules.MaxPlayers {
		return fmt.Errorf("player count %d outside table range %d-%d",
			CLI.Players, rules.MinPlayers, rules.MaxPlayers)
	}

	g, err := eng.CreateGame(ctx, rules)
	if err != nil {
		return err
	}

	players := make([]string, CLI.Players)
	for i := range players {
		players[i] = fmt.Sprintf("player%d", i+1)
		escrow.Deposit(players[i], rules.MaxBuyIn)
		if _, err := eng.Join(ctx, g.ID, players[i], rules.MinBuyIn); err != nil {
			return err
		}
	}

	logger.Info("table running", "table", table.Name, "game", g.ID,
		"players", len(players), "hands", CLI.Hands)

	for hand := 0; hand < CLI.Hands; hand++ {
		state, err := eng.Game(ctx, g.ID)
		if err != nil {
			return err
		}
		if len(state.FundedSeats()) < rules.MinPlayers {
			logger.Info("not enough funded players to continue", "hand", hand)
			break
		}

		if err := playHand(ctx, eng, g.ID, state); err != nil {
			return err
		}

		state, err = eng.Game(ctx, g.ID)
		if err != nil {
			return err
		}
		for _, payout := range state.Results {
			logger.Info("hand result", "hand", state.HandNum,
				"player", payout.PlayerID, "won", payout.Amount)
		}
		if err := eng.NewHand(ctx, g.ID); err != nil {
			return err
		}
	}

	return eng.EndGame(ctx, g.ID)
}

func buildSecrecy(cfg *config.Config, logger *log.Logger, clock quartz.Clock) (mpc.Backend, error) {
	if cfg.MPC.Mock {
		logger.Info("using in-process card secrecy")
		return mpc.NewMock(logger), nil
	}
	logger.Info("using mpc cluster", "nodes", len(cfg.MPC.Nodes), "quorum", cfg.MPC.Quorum)
	return mpc.NewClient(cfg.MPC.ClientConfig(), logger, clock)
}

// playHand drives one hand to completion with every seat playing a
// plain call-or-check line.
func playHand(ctx context.Context, eng *engine.Engine, gameID string, state *game.Game) error {
	entropy := make(map[string][32]byte)
	for _, idx := range state.FundedSeats() {
		var contribution [32]byte
		if _, err := rand.Read(contribution[:]); err != nil {
			return fmt.Errorf("entropy: %w", err)
		}
		entropy[state.Seats[idx].PlayerID] = contribution
	}
	if err := eng.StartHand(ctx, gameID, entropy); err != nil {
		return err
	}

	for {
		g, err := eng.Game(ctx, gameID)
		if err != nil {
			return err
		}

		switch {
		case g.Stage == game.Finished:
			return nil

		case g.Stage == game.Showdown:
			if _, err := eng.ExecuteShowdown(ctx, gameID); err != nil {
				return err
			}

		case g.Current < 0:
			if _, err := eng.AdvanceStage(ctx, gameID); err != nil {
				return err
			}

		default:
			seat := &g.Seats[g.Current]
			action := game.Check
			if g.CurrentBet > seat.RoundBet {
				action = game.Call
			}
			if _, err := eng.Action(ctx, gameID, seat.PlayerID, action, 0); err != nil {
				return err
			}
		}
	}
}

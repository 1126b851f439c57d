package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/game"
	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/mpc"
)

// Config is the complete service configuration.
type Config struct {
	Service ServiceSettings `hcl:"service,block"`
	MPC     MPCSettings     `hcl:"mpc,block"`
	Tables  []TableConfig   `hcl:"table,block"`
}

// ServiceSettings contains service-level configuration.
type ServiceSettings struct {
	LogLevel string `hcl:"log_level,optional"`
}

// MPCSettings selects and configures the card-secrecy backend.
type MPCSettings struct {
	Mock           bool     `hcl:"mock,optional"`
	Nodes          []string `hcl:"nodes,optional"`
	Quorum         int      `hcl:"quorum,optional"`
	TimeoutSeconds int      `hcl:"timeout_seconds,optional"`
}

// TableConfig defines the rules of one table.
type TableConfig struct {
	Name               string `hcl:"name,label"`
	SmallBlind         int    `hcl:"small_blind"`
	BigBlind           int    `hcl:"big_blind"`
	MinBuyIn           int    `hcl:"min_buy_in,optional"`
	MaxBuyIn           int    `hcl:"max_buy_in,optional"`
	MinPlayers         int    `hcl:"min_players,optional"`
	MaxPlayers         int    `hcl:"max_players,optional"`
	TurnTimeoutSeconds int    `hcl:"turn_timeout_seconds,optional"`
	MinRaiseMultiplier int    `hcl:"min_raise_multiplier,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		Service: ServiceSettings{LogLevel: "info"},
		MPC:     MPCSettings{Mock: true},
		Tables: []TableConfig{
			{
				Name:       "main",
				SmallBlind: 10,
				BigBlind:   20,
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads the HCL configuration file, falling back to defaults when
// the file does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Parse decodes configuration from an in-memory HCL document.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.LogLevel == "" {
		c.Service.LogLevel = "info"
	}
	if !c.MPC.Mock {
		if c.MPC.Quorum == 0 {
			c.MPC.Quorum = (len(c.MPC.Nodes) / 2) + 1
		}
		if c.MPC.TimeoutSeconds == 0 {
			c.MPC.TimeoutSeconds = 30
		}
	}

	for i := range c.Tables {
		table := &c.Tables[i]
		if table.MinBuyIn == 0 {
			table.MinBuyIn = table.BigBlind * 50
		}
		if table.MaxBuyIn == 0 {
			table.MaxBuyIn = table.BigBlind * 500
		}
		if table.MinPlayers == 0 {
			table.MinPlayers = 2
		}
		if table.MaxPlayers == 0 {
			table.MaxPlayers = game.MaxSeats
		}
		if table.TurnTimeoutSeconds == 0 {
			table.TurnTimeoutSeconds = 60
		}
		if table.MinRaiseMultiplier == 0 {
			table.MinRaiseMultiplier = 2
		}
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	if !c.MPC.Mock {
		if len(c.MPC.Nodes) == 0 {
			return fmt.Errorf("mpc: nodes required unless mock is enabled")
		}
		if c.MPC.Quorum < 1 || c.MPC.Quorum > len(c.MPC.Nodes) {
			return fmt.Errorf("mpc: quorum %d invalid for %d nodes", c.MPC.Quorum, len(c.MPC.Nodes))
		}
	}
	for _, table := range c.Tables {
		if err := table.GameConfig().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	return nil
}

// GameConfig converts a table block into game rules.
func (t TableConfig) GameConfig() game.Config {
	return game.Config{
		SmallBlind:         t.SmallBlind,
		BigBlind:           t.BigBlind,
		MinBuyIn:           t.MinBuyIn,
		MaxBuyIn:           t.MaxBuyIn,
		MinPlayers:         t.MinPlayers,
		MaxPlayers:         t.MaxPlayers,
		TurnTimeout:        time.Duration(t.TurnTimeoutSeconds) * time.Second,
		MinRaiseMultiplier: t.MinRaiseMultiplier,
	}
}

// ClientConfig converts the mpc block into cluster client settings.
// Meaningless when Mock is set.
func (m MPCSettings) ClientConfig() mpc.ClientConfig {
	return mpc.ClientConfig{
		Nodes:   m.Nodes,
		Quorum:  m.Quorum,
		Timeout: time.Duration(m.TimeoutSeconds) * time.Second,
	}
}

// GetTableByName returns a table configuration by name.
func (c *Config) GetTableByName(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

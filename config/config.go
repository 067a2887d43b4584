// Package config holds the engine configuration: broker endpoint,
// rebalancing policy, journal and report destinations. Values come from
// an optional YAML or JSON file with environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Tvpower/seekingQuant/portfolio"
)

type Config struct {
	Broker    BrokerConfig    `json:"broker" yaml:"broker"`
	Rebalance RebalanceConfig `json:"rebalance" yaml:"rebalance"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Log       LogConfig       `json:"log" yaml:"log"`

	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// BrokerConfig locates the gateway and names the account orders route to.
type BrokerConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	ClientID int    `json:"client_id" yaml:"client_id"`
	Account  string `json:"account" yaml:"account"`
}

// RebalanceConfig contains the planning and execution parameters.
type RebalanceConfig struct {
	// MinDelta is the smallest dollar difference worth an order.
	MinDelta float64 `json:"min_delta" yaml:"min_delta"`

	// TargetValue is the default per-symbol dollar target for
	// flat-target rebalancing.
	TargetValue float64 `json:"target_value" yaml:"target_value"`

	// TradeAmount is the default dollar amount per symbol in flat-buy
	// mode.
	TradeAmount float64 `json:"trade_amount" yaml:"trade_amount"`

	OrderPolicy string `json:"order_policy" yaml:"order_policy"`
	LimitOrders bool   `json:"limit_orders" yaml:"limit_orders"`
	Fractional  bool   `json:"fractional" yaml:"fractional"`

	// OrderSpacing is the pause between consecutive submissions,
	// e.g. "1s", "500ms".
	OrderSpacing string `json:"order_spacing" yaml:"order_spacing"`
}

// ParseOrderSpacing converts the spacing string to a time.Duration.
func (r RebalanceConfig) ParseOrderSpacing() (time.Duration, error) {
	if r.OrderSpacing == "" {
		return 0, nil
	}
	return time.ParseDuration(r.OrderSpacing)
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RunsFile      string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	MovementsFile string `json:"movements_file,omitempty" yaml:"movements_file,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// Load returns the configuration from path, or defaults when path is
// empty, with environment overrides applied on top. A .env file in the
// working directory is honored.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Broker.Host = getEnv("IBKR_HOST", c.Broker.Host)
	c.Broker.Port = getEnvAsInt("IBKR_PORT", c.Broker.Port)
	c.Broker.ClientID = getEnvAsInt("IBKR_CLIENT_ID", c.Broker.ClientID)
	c.Broker.Account = getEnv("IBKR_ACCOUNT", c.Broker.Account)
	c.Rebalance.TargetValue = getEnvAsFloat("TARGET_VALUE_PER_STOCK", c.Rebalance.TargetValue)
	c.Rebalance.TradeAmount = getEnvAsFloat("TRADE_AMOUNT", c.Rebalance.TradeAmount)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Broker.Host == "" {
		return fmt.Errorf("broker.host is required")
	}
	if c.Broker.Port <= 0 || c.Broker.Port > 65535 {
		return fmt.Errorf("broker.port must be between 1 and 65535")
	}
	if c.Broker.ClientID < 0 {
		return fmt.Errorf("broker.client_id must not be negative")
	}
	if c.Rebalance.MinDelta < 0 {
		return fmt.Errorf("rebalance.min_delta must not be negative")
	}
	if c.Rebalance.TargetValue < 0 {
		return fmt.Errorf("rebalance.target_value must not be negative")
	}
	if c.Rebalance.TradeAmount < 0 {
		return fmt.Errorf("rebalance.trade_amount must not be negative")
	}
	if !portfolio.OrderPolicy(c.Rebalance.OrderPolicy).Valid() {
		return fmt.Errorf("rebalance.order_policy must be 'sells_first' or 'buys_first'")
	}
	if _, err := c.Rebalance.ParseOrderSpacing(); err != nil {
		return fmt.Errorf("rebalance.order_spacing: %w", err)
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.MovementsFile == "" {
			return fmt.Errorf("journal runs_file and movements_file required for csv type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	if c.ReportsDir == "" {
		return fmt.Errorf("reports_dir is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults: a local paper
// gateway, a $5 threshold and a SQLite journal.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Host:     "127.0.0.1",
			Port:     7497,
			ClientID: 1,
		},
		Rebalance: RebalanceConfig{
			MinDelta:     5,
			TargetValue:  500,
			TradeAmount:  500,
			OrderPolicy:  string(portfolio.SellsFirst),
			OrderSpacing: "1s",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./seekingquant.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		ReportsDir: "reports",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

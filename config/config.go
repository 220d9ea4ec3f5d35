package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rustyeddy/papertrade/catalog"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAPERTRADE_"

// Config represents the complete paper trading configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID        string          `json:"id" yaml:"id"`
	Currency  string          `json:"currency" yaml:"currency"`
	Balance   decimal.Decimal `json:"balance" yaml:"balance"`
	CostBasis string          `json:"cost_basis,omitempty" yaml:"cost_basis,omitempty"` // "first_lot" or "weighted_average"
}

// CostBasisPolicy parses CostBasis.
func (a AccountConfig) CostBasisPolicy() (sim.CostBasisPolicy, error) {
	return sim.ParseCostBasisPolicy(a.CostBasis)
}

// CatalogConfig selects where instrument prices come from
type CatalogConfig struct {
	Source      string              `json:"source" yaml:"source"` // "http", "file" or "static"
	URL         string              `json:"url,omitempty" yaml:"url,omitempty"`
	File        string              `json:"file,omitempty" yaml:"file,omitempty"`
	Instruments []market.Instrument `json:"instruments,omitempty" yaml:"instruments,omitempty"`
	Refresh     string              `json:"refresh,omitempty" yaml:"refresh,omitempty"` // cron spec, e.g. "@every 60s"; empty disables
	Timeout     string              `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "10s"
}

// ParseTimeout converts the timeout string to time.Duration
func (c CatalogConfig) ParseTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	CSVFile string `json:"csv_file,omitempty" yaml:"csv_file,omitempty"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type ServerConfig struct {
	Port int `json:"port" yaml:"port"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
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

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if money.GetCurrency(c.Account.Currency) == nil {
		return fmt.Errorf("account.currency: unknown currency %q", c.Account.Currency)
	}
	if c.Account.Balance.IsNegative() {
		return fmt.Errorf("account.balance must not be negative")
	}
	if _, err := c.Account.CostBasisPolicy(); err != nil {
		return fmt.Errorf("account.cost_basis: %w", err)
	}

	switch c.Catalog.Source {
	case "http":
	case "file":
		if c.Catalog.File == "" {
			return fmt.Errorf("catalog.file required for file source")
		}
	case "static":
		for i, in := range c.Catalog.Instruments {
			if err := in.Validate(); err != nil {
				return fmt.Errorf("catalog.instruments[%d]: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("catalog.source must be 'http', 'file' or 'static'")
	}
	if c.Catalog.Refresh != "" {
		if _, err := cron.ParseStandard(c.Catalog.Refresh); err != nil {
			return fmt.Errorf("catalog.refresh: %w", err)
		}
	}
	if _, err := c.Catalog.ParseTimeout(); err != nil {
		return fmt.Errorf("catalog.timeout: %w", err)
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.CSVFile == "" {
			return fmt.Errorf("journal csv_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:        "PAPER-001",
			Currency:  "USD",
			Balance:   decimal.NewFromInt(100000),
			CostBasis: sim.FirstLot.String(),
		},
		Catalog: CatalogConfig{
			Source:  "http",
			URL:     catalog.DefaultURL,
			Refresh: catalog.DefaultSchedule,
			Timeout: "10s",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./papertrade.db",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ApplyEnv loads envFile (if present) into the environment without
// replacing variables that are already set, then applies PAPERTRADE_*
// overrides to c. An empty envFile means ".env".
func (c *Config) ApplyEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	setString(&c.Account.ID, "ACCOUNT_ID")
	setString(&c.Account.Currency, "CURRENCY")
	setString(&c.Account.CostBasis, "COST_BASIS")
	setString(&c.Catalog.Source, "CATALOG_SOURCE")
	setString(&c.Catalog.URL, "CATALOG_URL")
	setString(&c.Catalog.File, "CATALOG_FILE")
	setString(&c.Catalog.Refresh, "CATALOG_REFRESH")
	setString(&c.Catalog.Timeout, "CATALOG_TIMEOUT")
	setString(&c.Journal.Type, "JOURNAL_TYPE")
	setString(&c.Journal.CSVFile, "JOURNAL_CSV_FILE")
	setString(&c.Journal.DBPath, "JOURNAL_DB_PATH")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if v, ok := lookup("BALANCE"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("%sBALANCE: %w", EnvPrefix, err)
		}
		c.Account.Balance = d
	}
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		c.Server.Port = port
	}
	return nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

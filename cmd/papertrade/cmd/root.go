package cmd

import (
	"fmt"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A paper trading simulator for stocks",
	Long: `Papertrade simulates a brokerage account against a live stock listing.

It provides tools for:
  - Buying and selling shares with virtual cash
  - Tracking positions and profit/loss against current prices
  - Serving the account over a JSON and WebSocket API
  - Keeping a persistent, queryable transaction journal
  - Replaying scripted price and order scenarios

Settings come from a YAML or JSON config file, a .env file and
PAPERTRADE_* environment variables, in increasing order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile  string
	envFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with PAPERTRADE_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

// loadConfig resolves the effective configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// consoleLogger is the human-readable logger interactive commands use. It
// writes to stderr and stays at warn unless --log-level says otherwise.
func consoleLogger() *zap.Logger {
	level := "warn"
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.NewConsole(level)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

package cmd

import (
	"fmt"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/market"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage papertrade configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  papertrade config init -o papertrade.yaml
  papertrade config validate -f papertrade.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings.

Example:
  papertrade config init -o papertrade.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  papertrade config validate -f papertrade.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "papertrade.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	_ = configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  papertrade serve -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Account: %s (%s %s, cost basis %s)\n", cfg.Account.ID,
		market.FormatCash(cfg.Account.Balance, cfg.Account.Currency), cfg.Account.Currency, orDefault(cfg.Account.CostBasis, "first_lot"))
	fmt.Printf("  Catalog: %s %s\n", cfg.Catalog.Source, catalogTarget(cfg.Catalog))
	fmt.Printf("  Journal: %s\n", orDefault(cfg.Journal.Type, "none"))
	fmt.Printf("  Server:  port %d\n", cfg.Server.Port)
	return nil
}

func catalogTarget(c config.CatalogConfig) string {
	switch c.Source {
	case "http":
		return c.URL
	case "file":
		return c.File
	default:
		return fmt.Sprintf("(%d instruments)", len(c.Instruments))
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

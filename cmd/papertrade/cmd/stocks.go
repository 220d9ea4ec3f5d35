package cmd

import (
	"fmt"

	"github.com/rustyeddy/papertrade/catalog"
	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/market"
	"github.com/spf13/cobra"
)

var stocksCmd = &cobra.Command{
	Use:   "stocks [query]",
	Short: "List tradable stocks",
	Long: `Fetch the stock listing and print it, optionally filtered by a
case-insensitive match on symbol or name.

Examples:
  papertrade stocks
  papertrade stocks apple`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStocks,
}

func init() {
	rootCmd.AddCommand(stocksCmd)
}

func runStocks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := newSource(cfg.Catalog)
	if err != nil {
		return err
	}
	store := catalog.NewStore(src, catalog.WithLogger(consoleLogger()))
	snap, err := store.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	printStocks(cfg, snap.Search(query))
	return nil
}

func printStocks(cfg *config.Config, list []market.Instrument) {
	if len(list) == 0 {
		fmt.Println("No matching stocks.")
		return
	}
	fmt.Printf("%-8s %-32s %12s  %s\n", "SYMBOL", "NAME", "PRICE", "SENTIMENT")
	for _, in := range list {
		fmt.Printf("%-8s %-32s %12s  %s\n", in.Symbol, truncate(in.Name, 32),
			market.FormatCash(in.Price, cfg.Account.Currency), in.Sentiment)
	}
}

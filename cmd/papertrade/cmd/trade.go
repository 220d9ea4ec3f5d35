package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Buy or sell shares at the current price",
	Long: `Execute a market order against the configured account.

With the SQLite journal the account is restored from its earlier
transactions first, so cash and positions carry over between runs.

Examples:
  papertrade trade buy AAPL 10
  papertrade trade sell AAPL 5`,
}

var tradeBuyCmd = &cobra.Command{
	Use:   "buy <symbol> <quantity>",
	Short: "Buy shares",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, journal.Buy, args)
	},
}

var tradeSellCmd = &cobra.Command{
	Use:   "sell <symbol> <quantity>",
	Short: "Sell shares",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, journal.Sell, args)
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show cash, positions and profit/loss",
	Args:  cobra.NoArgs,
	RunE:  runAccount,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	rootCmd.AddCommand(accountCmd)
	tradeCmd.AddCommand(tradeBuyCmd)
	tradeCmd.AddCommand(tradeSellCmd)
}

// openAccount loads config, restores the account and prices it.
func openAccount(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := newApp(cfg, consoleLogger())
	if err != nil {
		return nil, err
	}
	if _, err := a.restore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	_ = a.refresh(ctx)
	return a, nil
}

func runTrade(cmd *cobra.Command, action journal.Action, args []string) error {
	symbol := args[0]
	qty, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("quantity %q: %w", args[1], broker.ErrInvalidQuantity)
	}

	ctx := cmd.Context()
	a, err := openAccount(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var tx journal.Transaction
	if action == journal.Buy {
		tx, err = a.engine.Buy(ctx, symbol, qty)
	} else {
		tx, err = a.engine.Sell(ctx, symbol, qty)
	}
	if err != nil {
		if errors.Is(err, broker.ErrUnknownInstrument) && a.store.Snapshot().Len() == 0 {
			return fmt.Errorf("%w (no prices loaded; is the catalog at %s reachable?)", err, a.cfg.Catalog.URL)
		}
		return err
	}

	cur := a.cfg.Account.Currency
	fmt.Printf("✓ %s %d %s @ %s = %s\n", tx.Action, tx.Quantity, tx.Symbol,
		market.FormatCash(tx.Price, cur), market.FormatCash(tx.Total, cur))
	if tx.Action == journal.Sell {
		fmt.Printf("  Realized P/L: %s\n", market.FormatCash(tx.RealizedPL, cur))
	}
	fmt.Printf("  Cash: %s\n", market.FormatCash(a.engine.Cash(), cur))
	fmt.Printf("  Transaction: %s\n", tx.ID)
	return nil
}

func runAccount(cmd *cobra.Command, args []string) error {
	a, err := openAccount(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.engine.Summary()
	cur := s.Currency

	fmt.Printf("Account %s (%s)\n", s.AccountID, cur)
	fmt.Printf("  Cash:         %s\n", market.FormatCash(s.Cash, cur))
	fmt.Printf("  Market value: %s\n", market.FormatCash(s.MarketValue, cur))
	fmt.Printf("  Equity:       %s\n", market.FormatCash(s.Equity, cur))
	fmt.Printf("  Profit/Loss:  %s\n", market.FormatCash(s.ProfitLoss, cur))
	fmt.Printf("  Realized P/L: %s\n", market.FormatCash(s.RealizedPL, cur))
	fmt.Println()

	if len(s.Positions) == 0 {
		fmt.Println("No open positions.")
		return nil
	}
	fmt.Printf("%-8s %-24s %8s %12s %12s %12s\n", "SYMBOL", "NAME", "QTY", "BASIS", "PRICE", "P/L")
	for _, p := range s.Positions {
		fmt.Printf("%-8s %-24s %8d %12s %12s %12s\n", p.Symbol, truncate(p.Name, 24), p.Quantity,
			market.FormatCash(p.CostBasis, cur), market.FormatCash(p.Price, cur), market.FormatCash(p.UnrealizedPL, cur))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

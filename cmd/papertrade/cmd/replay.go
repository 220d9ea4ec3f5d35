package cmd

import (
	"fmt"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/internal/replay"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.csv>",
	Short: "Replay a scripted price and order scenario",
	Long: `Run a what-if session from a CSV script. Each row moves one price and may
place an order, against a fresh in-memory account that is never journaled.

CSV columns: time,symbol,price[,event,arg1]
Events: BUY <qty>, SELL <qty>, SELL_ALL

Example:
  papertrade replay scenarios/earnings.csv --cash 25000 -o earnings.org`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayCash       string
	replayEventFirst bool
	replayContinue   bool
	replayOutput     string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayCash, "cash", "", "starting cash (defaults to account.balance)")
	replayCmd.Flags().BoolVar(&replayEventFirst, "event-first", false, "execute a row's order before applying its price")
	replayCmd.Flags().BoolVar(&replayContinue, "continue", false, "count rejected orders instead of stopping")
	replayCmd.Flags().StringVarP(&replayOutput, "output", "o", "", "write an Org-mode report of the final account")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cash := cfg.Account.Balance
	if replayCash != "" {
		if cash, err = decimal.NewFromString(replayCash); err != nil {
			return fmt.Errorf("--cash: %w", err)
		}
	}
	policy, err := cfg.Account.CostBasisPolicy()
	if err != nil {
		return err
	}

	board := market.NewBoard(cfg.Catalog.Instruments)
	engine := sim.NewEngine(broker.Account{
		ID:       cfg.Account.ID + "-replay",
		Currency: cfg.Account.Currency,
		Cash:     cash,
	}, board, nil,
		sim.WithCostBasis(policy),
		sim.WithLogger(consoleLogger().Named("engine")),
	)

	res, err := replay.CSV(cmd.Context(), args[0], engine, board, replay.Options{
		TickThenEvent:    !replayEventFirst,
		ContinueOnReject: replayContinue,
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", args[0], err)
	}

	s := engine.Summary()
	cur := s.Currency
	fmt.Printf("Replayed %d rows: %d orders, %d rejected\n", res.Rows, res.Orders, res.Rejected)
	fmt.Printf("  Starting cash: %s\n", market.FormatCash(cash, cur))
	fmt.Printf("  Cash:          %s\n", market.FormatCash(s.Cash, cur))
	fmt.Printf("  Equity:        %s\n", market.FormatCash(s.Equity, cur))
	fmt.Printf("  Realized P/L:  %s\n", market.FormatCash(s.RealizedPL, cur))
	fmt.Printf("  Open P/L:      %s\n", market.FormatCash(s.ProfitLoss, cur))

	if replayOutput != "" {
		r := engine.Report()
		r.OrgPath = replayOutput
		if err := r.WriteOrg(); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("\nReport saved to: %s\n", replayOutput)
	}
	return nil
}

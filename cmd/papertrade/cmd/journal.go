package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the transaction journal",
	Long: `Query and display transactions recorded in the SQLite journal.

Subcommands:
  list   - List every transaction of the configured account
  show   - Get details of a specific transaction by ID
  today  - List transactions executed today
  day    - List transactions executed on a specific day
  report - Write an Org-mode account report

Examples:
  papertrade journal list
  papertrade journal show <tx-id>
  papertrade journal today
  papertrade journal day 2024-01-15
  papertrade journal report -o session.org`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every transaction of the account",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <tx-id>",
	Short: "Get details of a specific transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List transactions executed today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List transactions executed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an Org-mode report of the account",
	Args:  cobra.NoArgs,
	RunE:  runJournalReport,
}

var (
	journalDBPath string
	reportOutput  string
	reportNotes   []string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalReportCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (defaults to journal.db_path)")
	journalReportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report here instead of stdout")
	journalReportCmd.Flags().StringArrayVarP(&reportNotes, "note", "n", nil, "observation to add to the report (repeatable)")
}

// openHistory opens the SQLite journal named by --db or the config.
func openHistory() (*journal.SQLite, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	path := journalDBPath
	if path == "" {
		if cfg.Journal.Type != "sqlite" {
			return nil, "", fmt.Errorf("journal queries need the sqlite journal (configured: %q); pass --db", cfg.Journal.Type)
		}
		path = cfg.Journal.DBPath
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, "", fmt.Errorf("open db: %w", err)
	}
	return j, cfg.Account.ID, nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, accountID, err := openHistory()
	if err != nil {
		return err
	}
	defer j.Close()

	txs, err := j.ListTransactions(cmd.Context(), accountID)
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}
	if len(txs) == 0 {
		fmt.Printf("No transactions for account %s.\n", accountID)
		return nil
	}
	fmt.Println(journal.FormatTransactionsOrg(txs))
	return nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, _, err := openHistory()
	if err != nil {
		return err
	}
	defer j.Close()

	tx, err := j.GetTransaction(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	fmt.Println(journal.FormatTransactionOrg(tx))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	loc := time.Local
	return listDay(cmd.Context(), loc, time.Now().In(loc).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd.Context(), time.Local, args[0])
}

func listDay(ctx context.Context, loc *time.Location, day string) error {
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, _, err := openHistory()
	if err != nil {
		return err
	}
	defer j.Close()

	txs, err := j.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}

	fmt.Println(journal.FormatTransactionsOrg(txs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}

func runJournalReport(cmd *cobra.Command, args []string) error {
	a, err := openAccount(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	r := a.engine.Report()
	r.Notes = reportNotes
	if reportOutput == "" {
		out, err := r.Org()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	r.OrgPath = reportOutput
	if err := r.WriteOrg(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("✓ Report written: %s\n", reportOutput)
	return nil
}

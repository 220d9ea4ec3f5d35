package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transactions.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

func TestCSVJournalRecordTransaction(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transactions.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)

	rec := txn("T1", Sell, "AAPL", "160", 5)
	rec.CostBasis = decimal.RequireFromString("150")
	rec.RealizedPL = decimal.RequireFromString("50")
	require.NoError(t, j.RecordTransaction(context.Background(), rec))
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"T1", "acct-1", "Sell", "AAPL", "AAPL Inc.", "160", "5", "800", "150", "50", "2024-01-02T15:00:00Z",
	}, rows[1])
}

func TestCSVJournalAppendsWithoutSecondHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transactions.csv")
	ctx := context.Background()

	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordTransaction(ctx, txn("T1", Buy, "AAPL", "150", 10)))
	require.NoError(t, j.Close())

	j, err = NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordTransaction(ctx, txn("T2", Buy, "MSFT", "400", 1)))
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "T1", rows[1][0])
	assert.Equal(t, "T2", rows[2][0])
}

package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = 'transactions'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "transactions", name)
}

func TestSQLiteRecordTransactionRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })
	ctx := context.Background()

	rec := txn("01HTX0000000000000000000A", Sell, "AAPL", "160.125", 5)
	rec.CostBasis = decimal.RequireFromString("150")
	rec.RealizedPL = decimal.RequireFromString("50.625")

	require.NoError(t, j.RecordTransaction(ctx, rec))

	got, err := j.GetTransaction(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.AccountID, got.AccountID)
	assert.Equal(t, Sell, got.Action)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Name, got.Name)
	assert.True(t, rec.Price.Equal(got.Price), "price %s", got.Price)
	assert.Equal(t, rec.Quantity, got.Quantity)
	assert.True(t, rec.Total.Equal(got.Total), "total %s", got.Total)
	assert.True(t, rec.CostBasis.Equal(got.CostBasis))
	assert.True(t, rec.RealizedPL.Equal(got.RealizedPL))
	assert.True(t, rec.Time.Equal(got.Time))
}

func TestSQLiteGetTransactionNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	_, err := j.GetTransaction(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListTransactionsByAccount(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })
	ctx := context.Background()

	ids := []string{"T3", "T1", "T2"}
	for _, id := range ids {
		require.NoError(t, j.RecordTransaction(ctx, txn(id, Buy, "AAPL", "150", 1)))
	}
	other := txn("X1", Buy, "MSFT", "400", 1)
	other.AccountID = "acct-2"
	require.NoError(t, j.RecordTransaction(ctx, other))

	got, err := j.ListTransactions(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, tx := range got {
		assert.Equal(t, ids[i], tx.ID, "insertion order must be kept")
	}

	got, err = j.ListTransactions(ctx, "acct-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X1", got[0].ID)
}

func TestSQLiteListTransactionsBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })
	ctx := context.Background()

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		day.Add(-time.Minute),
		day.Add(9 * time.Hour),
		day.Add(23 * time.Hour),
		day.Add(24 * time.Hour),
	}
	for i, tm := range times {
		tx := txn(string(rune('A'+i)), Buy, "AAPL", "150", 1)
		tx.Time = tm
		require.NoError(t, j.RecordTransaction(ctx, tx))
	}

	got, err := j.ListTransactionsBetween(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].ID)
	assert.Equal(t, "C", got[1].ID)
}

func TestSQLiteDuplicateIDRejected(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })
	ctx := context.Background()

	require.NoError(t, j.RecordTransaction(ctx, txn("T1", Buy, "AAPL", "150", 1)))
	assert.Error(t, j.RecordTransaction(ctx, txn("T1", Buy, "AAPL", "150", 1)))
}

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const selectTransactions = `
	SELECT tx_id, account_id, action, symbol, name, price, quantity, total, cost_basis, realized_pl, time
	FROM transactions`

// GetTransaction returns a single transaction by ID.
func (j *SQLite) GetTransaction(ctx context.Context, txID string) (Transaction, error) {
	row := j.db.QueryRowContext(ctx, selectTransactions+` WHERE tx_id = ?`, txID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, fmt.Errorf("transaction %q not found", txID)
		}
		return Transaction{}, err
	}
	return tx, nil
}

// ListTransactions returns every transaction of an account in execution
// order. This is what a session replays to restore its state.
func (j *SQLite) ListTransactions(ctx context.Context, accountID string) ([]Transaction, error) {
	rows, err := j.db.QueryContext(ctx, selectTransactions+`
		WHERE account_id = ?
		ORDER BY seq ASC`, accountID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListTransactionsBetween returns transactions executed within [start, end)
// across all accounts.
func (j *SQLite) ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	rows, err := j.db.QueryContext(ctx, selectTransactions+`
		WHERE time >= ? AND time < ?
		ORDER BY seq ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var (
		tx     Transaction
		action string
	)
	err := row.Scan(
		&tx.ID,
		&tx.AccountID,
		&action,
		&tx.Symbol,
		&tx.Name,
		&tx.Price,
		&tx.Quantity,
		&tx.Total,
		&tx.CostBasis,
		&tx.RealizedPL,
		&tx.Time,
	)
	if err != nil {
		return Transaction{}, err
	}
	if tx.Action, err = ParseAction(action); err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	return tx, nil
}

func collect(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

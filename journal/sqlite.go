package journal

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTransaction(ctx context.Context, t Transaction) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO transactions
		(tx_id, account_id, action, symbol, name, price, quantity, total, cost_basis, realized_pl, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Action.String(), t.Symbol, t.Name,
		t.Price, t.Quantity, t.Total, t.CostBasis, t.RealizedPL, t.Time.UTC(),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

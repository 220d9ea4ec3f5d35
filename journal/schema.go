// journal/schema.go
package journal

// Amounts are stored as TEXT so decimals round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	tx_id TEXT NOT NULL UNIQUE,
	account_id TEXT NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL,
	price TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	total TEXT NOT NULL,
	cost_basis TEXT NOT NULL,
	realized_pl TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id, seq);
CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(time);
`

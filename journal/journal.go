// journal/journal.go
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Action int

const (
	Buy Action = iota + 1
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// ParseAction accepts "buy" or "sell" in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown action: %q", s)
	}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Transaction is one executed order. Once appended to a Ledger it is never
// edited.
type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Action    Action          `json:"action"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	// CostBasis is the position's basis once a buy has executed, or the
	// basis the shares were held at for a sell. RealizedPL is
	// (Price - CostBasis) * Quantity for sells and zero for buys.
	CostBasis  decimal.Decimal `json:"cost_basis"`
	RealizedPL decimal.Decimal `json:"realized_pl"`
	Time       time.Time       `json:"time"`
}

// Journal persists executed transactions outside the process.
type Journal interface {
	RecordTransaction(ctx context.Context, tx Transaction) error
	Close() error
}

// Nop discards everything. It is the default sink for in-memory sessions.
type Nop struct{}

func (Nop) RecordTransaction(context.Context, Transaction) error { return nil }
func (Nop) Close() error                                         { return nil }

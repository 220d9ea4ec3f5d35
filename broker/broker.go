package broker

import (
	"context"
	"errors"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/shopspring/decimal"
)

// Broker is the command and query surface a presentation layer drives.
type Broker interface {
	GetAccount(ctx context.Context) (Account, error)
	Positions(ctx context.Context) ([]Position, error)
	Buy(ctx context.Context, symbol string, quantity int64) (journal.Transaction, error)
	Sell(ctx context.Context, symbol string, quantity int64) (journal.Transaction, error)
}

type Account struct {
	ID       string          `json:"id"`
	Currency string          `json:"currency"`
	Cash     decimal.Decimal `json:"cash"`
}

// Position is the aggregated holding of one symbol. Quantity is always > 0
// for positions held in a book.
type Position struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	CostBasis decimal.Decimal `json:"cost_basis"`
	Quantity  int64           `json:"quantity"`
}

// Cost is the position valued at its cost basis.
func (p Position) Cost() decimal.Decimal {
	return p.CostBasis.Mul(decimal.NewFromInt(p.Quantity))
}

// Order rejections. They leave account state untouched and are wrapped with
// the symbol and quantity that caused them; test with errors.Is.
var (
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrUnknownInstrument  = errors.New("unknown instrument")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNoSuchPosition     = errors.New("no such position")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// IsRejection reports whether err is one of the order rejections above.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrUnknownInstrument) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrNoSuchPosition) ||
		errors.Is(err, ErrInsufficientShares)
}

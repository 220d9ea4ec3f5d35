package sim

import (
	"fmt"
	"math"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/shopspring/decimal"
)

// Replay rebuilds the account from previously journaled transactions, using
// each transaction's recorded price and cost basis rather than the catalog
// and the engine's policy. It only runs on a fresh engine and is
// all-or-nothing: if any transaction breaks an account invariant, nothing is
// applied. Replayed transactions are not re-journaled
// and do not notify subscribers.
func (e *Engine) Replay(txs []journal.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger.Len() > 0 {
		return fmt.Errorf("replay: account %s already has %d transactions", e.acct.ID, e.ledger.Len())
	}

	cash := e.acct.Cash
	b := e.book.clone()

	for i, tx := range txs {
		if tx.AccountID != e.acct.ID {
			return fmt.Errorf("replay: transaction %d (%s) belongs to account %q", i, tx.ID, tx.AccountID)
		}
		if tx.Quantity <= 0 {
			return fmt.Errorf("replay: transaction %d (%s): %w", i, tx.ID, broker.ErrInvalidQuantity)
		}
		total := tx.Price.Mul(decimal.NewFromInt(tx.Quantity))

		switch tx.Action {
		case journal.Buy:
			if total.GreaterThan(cash) {
				return fmt.Errorf("replay: transaction %d (%s): %w", i, tx.ID, broker.ErrInsufficientFunds)
			}
			basis := tx.Price
			name := tx.Name
			if pos, held := b.get(tx.Symbol); held {
				if tx.Quantity > math.MaxInt64-pos.Quantity {
					return fmt.Errorf("replay: transaction %d (%s): holding %d would overflow: %w",
						i, tx.ID, pos.Quantity, broker.ErrInvalidQuantity)
				}
				basis = e.policy.basisAfterBuy(pos, tx.Price, tx.Quantity)
				name = pos.Name
			}
			// Rows journaled without a basis fall back to the policy.
			if !tx.CostBasis.IsZero() {
				basis = tx.CostBasis
			}
			cash = cash.Sub(total)
			b.add(tx.Symbol, name, basis, tx.Quantity)

		case journal.Sell:
			pos, held := b.get(tx.Symbol)
			if !held {
				return fmt.Errorf("replay: transaction %d (%s): %w", i, tx.ID, broker.ErrNoSuchPosition)
			}
			if tx.Quantity > pos.Quantity {
				return fmt.Errorf("replay: transaction %d (%s): %w", i, tx.ID, broker.ErrInsufficientShares)
			}
			cash = cash.Add(total)
			b.reduce(tx.Symbol, tx.Quantity)

		default:
			return fmt.Errorf("replay: transaction %d (%s): unknown action %d", i, tx.ID, tx.Action)
		}
	}

	e.acct.Cash = cash
	e.book = b
	for _, tx := range txs {
		e.ledger.Append(tx)
	}
	return nil
}

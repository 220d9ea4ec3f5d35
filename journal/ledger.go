package journal

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger is the in-memory, append-only order log of one account.
type Ledger struct {
	mu  sync.RWMutex
	txs []Transaction
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(tx Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append(l.txs, tx)
}

// All returns the transactions in execution order. The slice is a copy.
func (l *Ledger) All() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// RealizedPL sums realized profit and loss over all sells.
func (l *Ledger) RealizedPL() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum := decimal.Zero
	for _, tx := range l.txs {
		sum = sum.Add(tx.RealizedPL)
	}
	return sum
}

package market

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Tick is a single price update for one symbol.
type Tick struct {
	Symbol string
	Price  decimal.Decimal
	Time   time.Time
}

// Board is a PriceSource whose prices are moved one tick at a time. Every
// Apply publishes a fresh Snapshot, so commands already holding the previous
// one keep a consistent view.
type Board struct {
	mu   sync.RWMutex
	snap *Snapshot
}

var _ PriceSource = (*Board)(nil)

// NewBoard starts a board from an initial listing, which may be empty.
func NewBoard(list []Instrument) *Board {
	return &Board{snap: NewSnapshot(list, time.Time{})}
}

func (b *Board) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// Apply sets the price of t.Symbol. A symbol the board has not seen is
// listed with its symbol as name.
func (b *Board) Apply(t Tick) (*Snapshot, error) {
	if t.Symbol == "" {
		return nil, fmt.Errorf("tick: symbol is required")
	}
	if t.Price.IsNegative() {
		return nil, fmt.Errorf("tick %s: negative price %s", t.Symbol, t.Price)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.snap.Instruments()
	in, ok := b.snap.Lookup(t.Symbol)
	if !ok {
		in = Instrument{Symbol: t.Symbol, Name: t.Symbol}
	}
	in.Price = t.Price
	list = append(list, in)

	b.snap = NewSnapshot(list, t.Time)
	return b.snap, nil
}

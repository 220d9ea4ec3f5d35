package sim

import (
	"github.com/rustyeddy/papertrade/broker"
	"github.com/shopspring/decimal"
)

// book holds at most one position per symbol, in the order the symbols were
// first bought. Every position it holds has Quantity > 0.
type book struct {
	positions map[string]*broker.Position
	order     []string
}

func newBook() *book {
	return &book{positions: make(map[string]*broker.Position)}
}

func (b *book) get(symbol string) (broker.Position, bool) {
	p, ok := b.positions[symbol]
	if !ok {
		return broker.Position{}, false
	}
	return *p, true
}

// add opens a position or grows an existing one, setting its basis.
func (b *book) add(symbol, name string, basis decimal.Decimal, qty int64) {
	if p, ok := b.positions[symbol]; ok {
		p.Quantity += qty
		p.CostBasis = basis
		return
	}
	b.positions[symbol] = &broker.Position{
		Symbol:    symbol,
		Name:      name,
		CostBasis: basis,
		Quantity:  qty,
	}
	b.order = append(b.order, symbol)
}

// reduce shrinks a position and drops it once it reaches zero. Callers have
// already checked qty <= held.
func (b *book) reduce(symbol string, qty int64) {
	p, ok := b.positions[symbol]
	if !ok {
		return
	}
	p.Quantity -= qty
	if p.Quantity > 0 {
		return
	}
	delete(b.positions, symbol)
	for i, s := range b.order {
		if s == symbol {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *book) list() []broker.Position {
	out := make([]broker.Position, 0, len(b.order))
	for _, s := range b.order {
		out = append(out, *b.positions[s])
	}
	return out
}

func (b *book) clone() *book {
	c := &book{
		positions: make(map[string]*broker.Position, len(b.positions)),
		order:     append([]string(nil), b.order...),
	}
	for s, p := range b.positions {
		cp := *p
		c.positions[s] = &cp
	}
	return c
}

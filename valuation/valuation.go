// Package valuation marks positions to the catalog. Everything here is a pure
// function of its inputs.
package valuation

import (
	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// Mark is the price a position is valued at: the snapshot price, or the cost
// basis when the symbol is missing from the snapshot.
func Mark(p broker.Position, snap *market.Snapshot) decimal.Decimal {
	if price, ok := snap.Price(p.Symbol); ok {
		return price
	}
	return p.CostBasis
}

// UnrealizedPL is (mark - cost basis) * quantity for one position.
func UnrealizedPL(p broker.Position, snap *market.Snapshot) decimal.Decimal {
	return Mark(p, snap).Sub(p.CostBasis).Mul(decimal.NewFromInt(p.Quantity))
}

// ProfitLoss is the unrealized profit and loss over all positions.
func ProfitLoss(positions []broker.Position, snap *market.Snapshot) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range positions {
		sum = sum.Add(UnrealizedPL(p, snap))
	}
	return sum
}

// MarketValue is Σ mark * quantity.
func MarketValue(positions []broker.Position, snap *market.Snapshot) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range positions {
		sum = sum.Add(Mark(p, snap).Mul(decimal.NewFromInt(p.Quantity)))
	}
	return sum
}

// Equity is cash plus the market value of all positions.
func Equity(cash decimal.Decimal, positions []broker.Position, snap *market.Snapshot) decimal.Decimal {
	return cash.Add(MarketValue(positions, snap))
}

package sim

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/shopspring/decimal"
)

// CostBasisPolicy decides what happens to a position's cost basis when more
// shares of an already-held symbol are bought.
type CostBasisPolicy int

const (
	// FirstLot keeps the price of the buy that opened the position.
	FirstLot CostBasisPolicy = iota
	// WeightedAverage re-averages the basis over all held shares.
	WeightedAverage
)

// averagePlaces is the precision weighted-average bases are rounded to.
const averagePlaces = 8

func (p CostBasisPolicy) String() string {
	switch p {
	case FirstLot:
		return "first_lot"
	case WeightedAverage:
		return "weighted_average"
	default:
		return "unknown"
	}
}

// ParseCostBasisPolicy parses "first_lot" or "weighted_average". The empty
// string selects FirstLot.
func ParseCostBasisPolicy(s string) (CostBasisPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_lot":
		return FirstLot, nil
	case "weighted_average":
		return WeightedAverage, nil
	default:
		return 0, fmt.Errorf("unknown cost basis policy: %q", s)
	}
}

// basisAfterBuy returns the basis of pos after buying qty more at price.
func (p CostBasisPolicy) basisAfterBuy(pos broker.Position, price decimal.Decimal, qty int64) decimal.Decimal {
	if p != WeightedAverage {
		return pos.CostBasis
	}
	held := decimal.NewFromInt(pos.Quantity)
	added := decimal.NewFromInt(qty)
	total := pos.CostBasis.Mul(held).Add(price.Mul(added))
	return total.Div(held.Add(added)).Round(averagePlaces)
}

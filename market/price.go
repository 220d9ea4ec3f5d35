package market

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Prices and cash are exact decimals. Totals and P&L are never rounded by the
// engine; rounding happens only when formatting for display.

// P converts a float literal to a price. Intended for tests and demos.
func P(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x)
}

// MustPrice parses a decimal string, panicking on malformed input.
func MustPrice(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// FormatCash renders an amount in the given ISO currency, e.g. "$98,500.00".
// Amounts are rounded to the currency's minor unit.
func FormatCash(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = money.USD
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// Package catalog retrieves the list of tradable instruments and keeps the
// last good snapshot of it for pricing.
package catalog

import (
	"context"
	"errors"

	"github.com/rustyeddy/papertrade/market"
)

// ErrUnavailable wraps every failure to obtain a usable catalog listing.
var ErrUnavailable = errors.New("catalog unavailable")

// Source fetches the current instrument listing.
type Source interface {
	Fetch(ctx context.Context) ([]market.Instrument, error)
}

// Static is a Source that always returns the same listing.
type Static []market.Instrument

func (s Static) Fetch(ctx context.Context) ([]market.Instrument, error) {
	out := make([]market.Instrument, len(s))
	copy(out, s)
	return out, nil
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]market.Instrument, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]market.Instrument, error) { return f(ctx) }

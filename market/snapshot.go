package market

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is an immutable view of the instrument catalog at one point in
// time. A nil *Snapshot behaves like an empty catalog.
type Snapshot struct {
	instruments []Instrument
	bySymbol    map[string]int
	fetchedAt   time.Time
}

// NewSnapshot builds a snapshot from a catalog listing. Order is preserved;
// when a symbol repeats, the later record replaces the earlier one in place.
func NewSnapshot(list []Instrument, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		instruments: make([]Instrument, 0, len(list)),
		bySymbol:    make(map[string]int, len(list)),
		fetchedAt:   fetchedAt,
	}
	for _, in := range list {
		if i, ok := s.bySymbol[in.Symbol]; ok {
			s.instruments[i] = in
			continue
		}
		s.bySymbol[in.Symbol] = len(s.instruments)
		s.instruments = append(s.instruments, in)
	}
	return s
}

// Lookup returns the instrument for symbol.
func (s *Snapshot) Lookup(symbol string) (Instrument, bool) {
	if s == nil {
		return Instrument{}, false
	}
	i, ok := s.bySymbol[symbol]
	if !ok {
		return Instrument{}, false
	}
	return s.instruments[i], true
}

// Price returns the current price for symbol.
func (s *Snapshot) Price(symbol string) (decimal.Decimal, bool) {
	in, ok := s.Lookup(symbol)
	return in.Price, ok
}

// Instruments returns a copy of the catalog in listing order.
func (s *Snapshot) Instruments() []Instrument {
	if s == nil {
		return nil
	}
	out := make([]Instrument, len(s.instruments))
	copy(out, s.instruments)
	return out
}

// Search returns instruments whose symbol or name contains query,
// ignoring case. An empty query returns everything.
func (s *Snapshot) Search(query string) []Instrument {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Instruments()
	}
	var out []Instrument
	if s == nil {
		return out
	}
	for _, in := range s.instruments {
		if strings.Contains(strings.ToLower(in.Symbol), q) ||
			strings.Contains(strings.ToLower(in.Name), q) {
			out = append(out, in)
		}
	}
	return out
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.instruments)
}

// FetchedAt is when the listing was retrieved. Zero for an empty snapshot.
func (s *Snapshot) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}

// market/instruments.go
package market

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Instrument is a single tradable record from the catalog. Instruments are
// values; once published in a Snapshot they are never edited.
type Instrument struct {
	Symbol    string          `json:"symbol" yaml:"symbol"`
	Name      string          `json:"name" yaml:"name"`
	Price     decimal.Decimal `json:"price" yaml:"price"`
	Sentiment Sentiment       `json:"sentiment" yaml:"sentiment"`
}

// Validate checks the fields the engine relies on.
func (i Instrument) Validate() error {
	if strings.TrimSpace(i.Symbol) == "" {
		return fmt.Errorf("instrument symbol is required")
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("instrument %s: negative price %s", i.Symbol, i.Price)
	}
	return nil
}

// Sentiment is the news sentiment label attached to an instrument.
type Sentiment int

const (
	Neutral Sentiment = iota
	Positive
	Negative
)

func (s Sentiment) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// ParseSentiment parses a sentiment label. Matching is case-insensitive and
// the empty string is Neutral.
func ParseSentiment(s string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "neutral":
		return Neutral, nil
	case "positive":
		return Positive, nil
	case "negative":
		return Negative, nil
	default:
		return Neutral, fmt.Errorf("unknown sentiment: %q", s)
	}
}

func (s Sentiment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is lenient: catalogs in the wild carry labels we don't know,
// and those degrade to Neutral rather than failing the whole fetch.
func (s *Sentiment) UnmarshalText(b []byte) error {
	v, err := ParseSentiment(string(b))
	if err != nil {
		v = Neutral
	}
	*s = v
	return nil
}

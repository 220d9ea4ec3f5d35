package broker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPositionCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		basis    string
		qty      int64
		expected string
	}{
		{"simple", "150", 10, "1500"},
		{"fractional", "0.1", 3, "0.3"},
		{"single", "410.55", 1, "410.55"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Position{CostBasis: decimal.RequireFromString(tt.basis), Quantity: tt.qty}
			if got := p.Cost(); !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Fatalf("Cost() = %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestIsRejection(t *testing.T) {
	t.Parallel()

	for _, err := range []error{
		ErrInvalidQuantity,
		ErrUnknownInstrument,
		ErrInsufficientFunds,
		ErrNoSuchPosition,
		ErrInsufficientShares,
	} {
		wrapped := fmt.Errorf("buy AAPL x10: %w", err)
		if !IsRejection(wrapped) {
			t.Fatalf("expected %v to be a rejection", wrapped)
		}
	}

	if IsRejection(errors.New("disk full")) {
		t.Fatalf("unexpected rejection")
	}
}

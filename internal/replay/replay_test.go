package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
)

func newEngine(t *testing.T, cash int64) (*sim.Engine, *market.Board) {
	t.Helper()
	board := market.NewBoard(nil)
	acct := broker.Account{ID: "REPLAY", Currency: "USD", Cash: decimal.NewFromInt(cash)}
	return sim.NewEngine(acct, board, nil), board
}

func TestReplay_BuySellScenario(t *testing.T) {
	ctx := context.Background()

	tmp := t.TempDir()
	csvPath := filepath.Join(tmp, "session.csv")

	// Scripted scenario:
	// - buy AAPL, let it rise, buy one MSFT
	// - sell part of AAPL, then the rest at the unchanged price
	script := `time,symbol,price,event,arg1
2026-01-24T09:30:00Z,AAPL,150,BUY,10
2026-01-24T09:30:05Z,AAPL,155,,
2026-01-24T09:30:10Z,MSFT,300,BUY,1
2026-01-24T09:30:15Z,AAPL,160,SELL,4
2026-01-24T09:30:20Z,AAPL,,SELL_ALL,
`
	if err := os.WriteFile(csvPath, []byte(script), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	engine, board := newEngine(t, 10000)
	events, cancel := engine.Subscribe()
	defer cancel()

	res, err := CSV(ctx, csvPath, engine, board, Options{TickThenEvent: true})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if res.Rows != 5 || res.Orders != 4 || res.Rejected != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if got, want := engine.Cash(), decimal.NewFromInt(9800); !got.Equal(want) {
		t.Fatalf("cash = %s, want %s", got, want)
	}

	positions, _ := engine.Positions(ctx)
	if len(positions) != 1 || positions[0].Symbol != "MSFT" || positions[0].Quantity != 1 {
		t.Fatalf("positions = %+v, want only 1 MSFT", positions)
	}

	summary := engine.Summary()
	if !summary.RealizedPL.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("realized P&L = %s, want 100", summary.RealizedPL)
	}
	if !summary.Equity.Equal(decimal.NewFromInt(10100)) {
		t.Fatalf("equity = %s, want 10100", summary.Equity)
	}

	prices := 0
	for {
		select {
		case ev := <-events:
			if ev.Kind == sim.PricesUpdated {
				prices++
			}
			continue
		default:
		}
		break
	}
	if prices != 4 {
		t.Fatalf("price events = %d, want 4", prices)
	}
}

func TestReplay_NoHeader(t *testing.T) {
	engine, board := newEngine(t, 1000)
	script := "2026-01-24T09:30:00Z,AAPL,100,buy,2\n"

	res, err := Read(context.Background(), strings.NewReader(script), engine, board, Options{TickThenEvent: true})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if res.Rows != 1 || res.Orders != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !engine.Cash().Equal(decimal.NewFromInt(800)) {
		t.Fatalf("cash = %s, want 800", engine.Cash())
	}
}

func TestReplay_Rejections(t *testing.T) {
	script := `time,symbol,price,event,arg1
2026-01-24T09:30:00Z,AAPL,100,SELL,5
2026-01-24T09:30:05Z,AAPL,100,BUY,1
`
	t.Run("stop", func(t *testing.T) {
		engine, board := newEngine(t, 1000)
		_, err := Read(context.Background(), strings.NewReader(script), engine, board, Options{TickThenEvent: true})
		if !errors.Is(err, broker.ErrNoSuchPosition) {
			t.Fatalf("err = %v, want ErrNoSuchPosition", err)
		}
		if !strings.Contains(err.Error(), "row 1") {
			t.Fatalf("err %q should name the row", err)
		}
	})

	t.Run("continue", func(t *testing.T) {
		engine, board := newEngine(t, 1000)
		res, err := Read(context.Background(), strings.NewReader(script), engine, board,
			Options{TickThenEvent: true, ContinueOnReject: true})
		if err != nil {
			t.Fatalf("replay failed: %v", err)
		}
		if res.Rejected != 1 || res.Orders != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}

func TestReplay_EventThenTick(t *testing.T) {
	script := `time,symbol,price,event,arg1
2026-01-24T09:30:00Z,AAPL,100,,
2026-01-24T09:30:05Z,AAPL,120,BUY,1
`
	engine, board := newEngine(t, 1000)
	if _, err := Read(context.Background(), strings.NewReader(script), engine, board, Options{}); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	// The buy executes before the row's price applies.
	if !engine.Cash().Equal(decimal.NewFromInt(900)) {
		t.Fatalf("cash = %s, want 900", engine.Cash())
	}
}

func TestReplay_BadRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"too few columns", "2026-01-24T09:30:00Z,AAPL"},
		{"bad time", "yesterday,AAPL,100"},
		{"bad price", "2026-01-24T09:30:00Z,AAPL,cheap"},
		{"unknown event", "2026-01-24T09:30:00Z,AAPL,100,SHORT,1"},
		{"missing quantity", "2026-01-24T09:30:00Z,AAPL,100,BUY"},
		{"bad quantity", "2026-01-24T09:30:00Z,AAPL,100,BUY,lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, board := newEngine(t, 1000)
			_, err := Read(context.Background(), strings.NewReader(tt.row+"\n"), engine, board, Options{TickThenEvent: true})
			if err == nil {
				t.Fatalf("expected error for %q", tt.row)
			}
		})
	}
}

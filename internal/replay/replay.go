package replay

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
)

// Options controls how replay behaves.
type Options struct {
	// If true: apply the row's price first, then its event, so BUY and SELL
	// execute at that row's price. This is what you want most of the time.
	TickThenEvent bool

	// If true, order rejections (insufficient funds, no position, ...) are
	// counted instead of stopping the replay.
	ContinueOnReject bool
}

// Result summarises a replay.
type Result struct {
	Rows     int
	Orders   int
	Rejected int
}

// CSV replays prices from a CSV file against engine, applying optional
// scripted orders. board must be the engine's price source.
//
// CSV formats supported:
//
//  1. Basic prices:
//     time,symbol,price
//
//  2. Prices + events:
//     time,symbol,price,event,arg1
//
// Events (case-insensitive):
//
//	BUY:       arg1=quantity
//	SELL:      arg1=quantity
//	SELL_ALL:  sells the whole position in symbol
//
// An empty price column leaves the symbol's price unchanged.
func CSV(ctx context.Context, csvPath string, engine *sim.Engine, board *market.Board, opts Options) (Result, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	return Read(ctx, f, engine, board, opts)
}

// Read is CSV for an already opened stream.
func Read(ctx context.Context, in io.Reader, engine *sim.Engine, board *market.Board, opts Options) (Result, error) {
	var res Result

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.Comment = '#'

	// Read first row and detect header or data.
	firstRow, err := r.Read()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		return res, err
	}

	hasHeader := len(firstRow) > 0 && strings.EqualFold(strings.TrimSpace(firstRow[0]), "time")
	if !hasHeader {
		if err := handleRow(ctx, engine, board, firstRow, opts, &res); err != nil {
			return res, err
		}
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		if len(row) == 0 {
			continue
		}
		if err := handleRow(ctx, engine, board, row, opts, &res); err != nil {
			return res, err
		}
	}
}

func handleRow(ctx context.Context, engine *sim.Engine, board *market.Board, row []string, opts Options, res *Result) error {
	res.Rows++
	line := res.Rows

	if len(row) < 3 {
		return fmt.Errorf("row %d: need at least 3 cols time,symbol,price: %v", line, row)
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	t, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return fmt.Errorf("row %d: bad time %q: %w", line, row[0], err)
	}
	symbol := row[1]

	var tick *market.Tick
	if row[2] != "" {
		price, err := decimal.NewFromString(row[2])
		if err != nil {
			return fmt.Errorf("row %d: bad price %q: %w", line, row[2], err)
		}
		tick = &market.Tick{Symbol: symbol, Price: price, Time: t}
	}

	event := ""
	var args []string
	if len(row) >= 4 {
		event = row[3]
	}
	if len(row) >= 5 {
		args = row[4:]
	}

	applyTick := func() error {
		if tick == nil {
			return nil
		}
		snap, err := board.Apply(*tick)
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		engine.NotifyPrices(snap)
		return nil
	}
	runEvent := func() error {
		if event == "" {
			return nil
		}
		err := handleEvent(ctx, engine, symbol, event, args)
		if err == nil {
			res.Orders++
			return nil
		}
		if opts.ContinueOnReject && broker.IsRejection(err) {
			res.Rejected++
			return nil
		}
		return fmt.Errorf("row %d: %w", line, err)
	}

	if opts.TickThenEvent {
		if err := applyTick(); err != nil {
			return err
		}
		return runEvent()
	}

	// Event first, then tick (rare, but supported)
	if err := runEvent(); err != nil {
		return err
	}
	return applyTick()
}

func handleEvent(ctx context.Context, engine *sim.Engine, symbol, event string, args []string) error {
	switch strings.ToUpper(event) {
	case "BUY":
		// BUY,10
		qty, err := parseQuantity(args)
		if err != nil {
			return fmt.Errorf("BUY: %w", err)
		}
		_, err = engine.Buy(ctx, symbol, qty)
		return err

	case "SELL":
		// SELL,4
		qty, err := parseQuantity(args)
		if err != nil {
			return fmt.Errorf("SELL: %w", err)
		}
		_, err = engine.Sell(ctx, symbol, qty)
		return err

	case "SELL_ALL":
		positions, err := engine.Positions(ctx)
		if err != nil {
			return err
		}
		for _, p := range positions {
			if p.Symbol == symbol {
				_, err = engine.Sell(ctx, symbol, p.Quantity)
				return err
			}
		}
		return fmt.Errorf("SELL_ALL %s: %w", symbol, broker.ErrNoSuchPosition)

	default:
		return fmt.Errorf("unknown event %q", event)
	}
}

var errMissingQuantity = errors.New("need arg1=quantity")

func parseQuantity(args []string) (int64, error) {
	if len(args) < 1 || args[0] == "" {
		return 0, errMissingQuantity
	}
	qty, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad quantity %q: %w", args[0], err)
	}
	return qty, nil
}

package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/internal/id"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/valuation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the paper-trading account: cash, the position book and the
// ledger. All commands and queries serialise on mu, so one Engine is one
// account.
type Engine struct {
	mu      sync.Mutex
	acct    broker.Account
	opening decimal.Decimal
	book    *book
	ledger  *journal.Ledger
	prices  market.PriceSource
	journal journal.Journal
	policy  CostBasisPolicy
	now     func() time.Time
	log     *zap.Logger
	subs    *notifier
}

type Option func(*Engine)

func WithCostBasis(p CostBasisPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithClock overrides the time source used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

var _ broker.Broker = (*Engine)(nil)

// NewEngine creates an account priced from prices. A nil journal keeps the
// session in memory only.
func NewEngine(acct broker.Account, prices market.PriceSource, j journal.Journal, opts ...Option) *Engine {
	if j == nil {
		j = journal.Nop{}
	}
	e := &Engine{
		acct:    acct,
		opening: acct.Cash,
		book:    newBook(),
		ledger:  journal.NewLedger(),
		prices:  prices,
		journal: j,
		policy:  FirstLot,
		now:     time.Now,
		log:     zap.NewNop(),
		subs:    newNotifier(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("account", acct.ID))
	return e
}

func (e *Engine) GetAccount(ctx context.Context) (broker.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct, nil
}

func (e *Engine) Cash() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.Cash
}

// Positions returns the book in the order symbols were first bought.
func (e *Engine) Positions(ctx context.Context) ([]broker.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.list(), nil
}

// Transactions returns the ledger in execution order.
func (e *Engine) Transactions() []journal.Transaction {
	return e.ledger.All()
}

func (e *Engine) CostBasisPolicy() CostBasisPolicy { return e.policy }

// ProfitLoss is the unrealized P&L of the book against the current snapshot.
func (e *Engine) ProfitLoss() decimal.Decimal {
	snap := e.prices.Snapshot()
	e.mu.Lock()
	positions := e.book.list()
	e.mu.Unlock()
	return valuation.ProfitLoss(positions, snap)
}

// Subscribe registers for state change events. Call the CancelFunc when done.
func (e *Engine) Subscribe() (<-chan Event, CancelFunc) {
	return e.subs.subscribe()
}

// NotifyPrices tells subscribers the catalog snapshot changed. Wire it to the
// catalog store's update hook.
func (e *Engine) NotifyPrices(snap *market.Snapshot) {
	e.subs.publish(Event{Kind: PricesUpdated, Time: snap.FetchedAt()})
}

// Buy executes a market buy at the current catalog price.
func (e *Engine) Buy(ctx context.Context, symbol string, quantity int64) (journal.Transaction, error) {
	e.mu.Lock()
	tx, err := e.buyLocked(ctx, symbol, quantity)
	e.mu.Unlock()

	return e.finish(tx, err)
}

// Sell executes a market sell at the current catalog price.
func (e *Engine) Sell(ctx context.Context, symbol string, quantity int64) (journal.Transaction, error) {
	e.mu.Lock()
	tx, err := e.sellLocked(ctx, symbol, quantity)
	e.mu.Unlock()

	return e.finish(tx, err)
}

// finish logs the outcome and notifies subscribers outside the lock.
func (e *Engine) finish(tx journal.Transaction, err error) (journal.Transaction, error) {
	if err != nil {
		if broker.IsRejection(err) {
			e.log.Debug("order rejected", zap.Error(err))
		} else {
			e.log.Error("order failed", zap.Error(err))
		}
		return journal.Transaction{}, err
	}

	e.log.Info("order executed",
		zap.String("tx_id", tx.ID),
		zap.Stringer("action", tx.Action),
		zap.String("symbol", tx.Symbol),
		zap.Int64("quantity", tx.Quantity),
		zap.Stringer("price", tx.Price),
		zap.Stringer("total", tx.Total),
	)
	e.subs.publish(Event{Kind: TradeExecuted, Transaction: &tx, Time: tx.Time})
	return tx, nil
}

// buyLocked checks everything and journals before touching cash, book or
// ledger, so a failure at any step leaves the account as it was.
func (e *Engine) buyLocked(ctx context.Context, symbol string, qty int64) (journal.Transaction, error) {
	if qty <= 0 {
		return journal.Transaction{}, fmt.Errorf("buy %s x%d: %w", symbol, qty, broker.ErrInvalidQuantity)
	}

	snap := e.prices.Snapshot()
	in, ok := snap.Lookup(symbol)
	if !ok {
		return journal.Transaction{}, fmt.Errorf("buy %s: %w", symbol, broker.ErrUnknownInstrument)
	}

	total := in.Price.Mul(decimal.NewFromInt(qty))
	if total.GreaterThan(e.acct.Cash) {
		return journal.Transaction{}, fmt.Errorf("buy %s x%d: cost %s exceeds cash %s: %w",
			symbol, qty, total, e.acct.Cash, broker.ErrInsufficientFunds)
	}

	basis := in.Price
	name := in.Name
	if pos, held := e.book.get(symbol); held {
		if qty > math.MaxInt64-pos.Quantity {
			return journal.Transaction{}, fmt.Errorf("buy %s x%d: holding %d would overflow: %w",
				symbol, qty, pos.Quantity, broker.ErrInvalidQuantity)
		}
		basis = e.policy.basisAfterBuy(pos, in.Price, qty)
		name = pos.Name
	}

	tx := e.newTransaction(journal.Buy, symbol, name, in.Price, qty)
	tx.CostBasis = basis

	if err := e.journal.RecordTransaction(ctx, tx); err != nil {
		return journal.Transaction{}, fmt.Errorf("buy %s x%d: journal: %w", symbol, qty, err)
	}

	e.acct.Cash = e.acct.Cash.Sub(total)
	e.book.add(symbol, name, basis, qty)
	e.ledger.Append(tx)
	return tx, nil
}

func (e *Engine) sellLocked(ctx context.Context, symbol string, qty int64) (journal.Transaction, error) {
	if qty <= 0 {
		return journal.Transaction{}, fmt.Errorf("sell %s x%d: %w", symbol, qty, broker.ErrInvalidQuantity)
	}

	pos, held := e.book.get(symbol)
	if !held {
		return journal.Transaction{}, fmt.Errorf("sell %s: %w", symbol, broker.ErrNoSuchPosition)
	}

	snap := e.prices.Snapshot()
	in, ok := snap.Lookup(symbol)
	if !ok {
		return journal.Transaction{}, fmt.Errorf("sell %s: %w", symbol, broker.ErrUnknownInstrument)
	}

	if qty > pos.Quantity {
		return journal.Transaction{}, fmt.Errorf("sell %s x%d: holding %d: %w",
			symbol, qty, pos.Quantity, broker.ErrInsufficientShares)
	}

	tx := e.newTransaction(journal.Sell, symbol, pos.Name, in.Price, qty)
	tx.CostBasis = pos.CostBasis
	tx.RealizedPL = in.Price.Sub(pos.CostBasis).Mul(decimal.NewFromInt(qty))

	if err := e.journal.RecordTransaction(ctx, tx); err != nil {
		return journal.Transaction{}, fmt.Errorf("sell %s x%d: journal: %w", symbol, qty, err)
	}

	e.acct.Cash = e.acct.Cash.Add(tx.Total)
	e.book.reduce(symbol, qty)
	e.ledger.Append(tx)
	return tx, nil
}

func (e *Engine) newTransaction(action journal.Action, symbol, name string, price decimal.Decimal, qty int64) journal.Transaction {
	now := e.now().UTC()
	return journal.Transaction{
		ID:         id.At(now),
		AccountID:  e.acct.ID,
		Action:     action,
		Symbol:     symbol,
		Name:       name,
		Price:      price,
		Quantity:   qty,
		Total:      price.Mul(decimal.NewFromInt(qty)),
		RealizedPL: decimal.Zero,
		Time:       now,
	}
}

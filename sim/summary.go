package sim

import (
	"time"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/valuation"
	"github.com/shopspring/decimal"
)

// Summary is everything a presentation layer shows for an account, priced
// against one snapshot.
type Summary struct {
	AccountID    string          `json:"account_id"`
	Currency     string          `json:"currency"`
	Cash         decimal.Decimal `json:"cash"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
	RealizedPL   decimal.Decimal `json:"realized_pl"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Equity       decimal.Decimal `json:"equity"`
	Positions    []PositionView  `json:"positions"`
	Transactions int             `json:"transactions"`
	PricedAt     time.Time       `json:"priced_at"`
}

// PositionView is a position marked to the snapshot.
type PositionView struct {
	broker.Position
	Price        decimal.Decimal `json:"price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	UnrealizedPL decimal.Decimal `json:"unrealized_pl"`
}

func (e *Engine) Summary() Summary {
	snap := e.prices.Snapshot()

	e.mu.Lock()
	acct := e.acct
	positions := e.book.list()
	realized := e.ledger.RealizedPL()
	count := e.ledger.Len()
	e.mu.Unlock()

	return summarize(snap, acct, positions, realized, count)
}

func summarize(snap *market.Snapshot, acct broker.Account, positions []broker.Position, realized decimal.Decimal, count int) Summary {
	views := make([]PositionView, 0, len(positions))
	for _, p := range positions {
		mark := valuation.Mark(p, snap)
		views = append(views, PositionView{
			Position:     p,
			Price:        mark,
			MarketValue:  mark.Mul(decimal.NewFromInt(p.Quantity)),
			UnrealizedPL: valuation.UnrealizedPL(p, snap),
		})
	}

	return Summary{
		AccountID:    acct.ID,
		Currency:     acct.Currency,
		Cash:         acct.Cash,
		ProfitLoss:   valuation.ProfitLoss(positions, snap),
		RealizedPL:   realized,
		MarketValue:  valuation.MarketValue(positions, snap),
		Equity:       valuation.Equity(acct.Cash, positions, snap),
		Positions:    views,
		Transactions: count,
		PricedAt:     snap.FetchedAt(),
	}
}

// Report builds an Org-mode account report from the current summary and the
// full ledger. Cash, book and ledger are read in one critical section.
func (e *Engine) Report() journal.AccountReport {
	snap := e.prices.Snapshot()

	e.mu.Lock()
	acct := e.acct
	opening := e.opening
	positions := e.book.list()
	realized := e.ledger.RealizedPL()
	txs := e.ledger.All()
	e.mu.Unlock()

	s := summarize(snap, acct, positions, realized, len(txs))

	holdings := make([]journal.Holding, 0, len(s.Positions))
	for _, p := range s.Positions {
		holdings = append(holdings, journal.Holding{
			Symbol:       p.Symbol,
			Name:         p.Name,
			Quantity:     p.Quantity,
			CostBasis:    p.CostBasis,
			Price:        p.Price,
			MarketValue:  p.MarketValue,
			UnrealizedPL: p.UnrealizedPL,
		})
	}

	return journal.AccountReport{
		AccountID:    s.AccountID,
		Currency:     s.Currency,
		Created:      e.now(),
		PricedAt:     s.PricedAt,
		OpeningCash:  opening,
		Cash:         s.Cash,
		MarketValue:  s.MarketValue,
		Equity:       s.Equity,
		UnrealizedPL: s.ProfitLoss,
		RealizedPL:   s.RealizedPL,
		Holdings:     holdings,
		Transactions: txs,
	}
}

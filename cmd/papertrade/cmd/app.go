package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/catalog"
	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/sim"
	"go.uber.org/zap"
)

// app is one account wired from config: catalog store, journal sink and
// engine.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *catalog.Store
	engine  *sim.Engine
	journal journal.Journal
	history *journal.SQLite // set when the journal can be read back
}

func newSource(c config.CatalogConfig) (catalog.Source, error) {
	switch c.Source {
	case "http":
		timeout, err := c.ParseTimeout()
		if err != nil {
			return nil, err
		}
		return catalog.NewHTTPSource(c.URL, timeout), nil
	case "file":
		return catalog.FileSource{Path: c.File}, nil
	case "static":
		return catalog.Static(c.Instruments), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", c.Source)
	}
}

func openJournal(c config.JournalConfig) (journal.Journal, *journal.SQLite, error) {
	switch c.Type {
	case "", "none":
		return journal.Nop{}, nil, nil
	case "csv":
		j, err := journal.NewCSV(c.CSVFile)
		if err != nil {
			return nil, nil, err
		}
		return j, nil, nil
	case "sqlite":
		j, err := journal.NewSQLite(c.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return j, j, nil
	default:
		return nil, nil, fmt.Errorf("unknown journal type %q", c.Type)
	}
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	src, err := newSource(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	policy, err := cfg.Account.CostBasisPolicy()
	if err != nil {
		return nil, err
	}
	j, history, err := openJournal(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	store := catalog.NewStore(src, catalog.WithLogger(log.Named("catalog")))
	engine := sim.NewEngine(broker.Account{
		ID:       cfg.Account.ID,
		Currency: cfg.Account.Currency,
		Cash:     cfg.Account.Balance,
	}, store, j,
		sim.WithCostBasis(policy),
		sim.WithLogger(log.Named("engine")),
	)
	store.OnUpdate(engine.NotifyPrices)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		engine:  engine,
		journal: j,
		history: history,
	}, nil
}

// restore replays the account's journaled transactions, if the journal can
// be read back. It returns the number of transactions restored.
func (a *app) restore(ctx context.Context) (int, error) {
	if a.history == nil {
		return 0, nil
	}
	txs, err := a.history.ListTransactions(ctx, a.cfg.Account.ID)
	if err != nil {
		return 0, fmt.Errorf("read journal: %w", err)
	}
	if err := a.engine.Replay(txs); err != nil {
		return 0, fmt.Errorf("restore account %s: %w", a.cfg.Account.ID, err)
	}
	if len(txs) > 0 {
		a.log.Info("account restored", zap.String("account", a.cfg.Account.ID), zap.Int("transactions", len(txs)))
	}
	return len(txs), nil
}

// refresh loads prices. A failed refresh is reported but not fatal; the
// caller continues with whatever snapshot the store holds.
func (a *app) refresh(ctx context.Context) error {
	_, err := a.store.Refresh(ctx)
	if errors.Is(err, catalog.ErrUnavailable) {
		a.log.Warn("prices unavailable", zap.Error(err))
	}
	return err
}

func (a *app) Close() error {
	return a.journal.Close()
}

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule refreshes the catalog once a minute.
const DefaultSchedule = "@every 60s"

// Refresher calls Store.Refresh on a cron schedule. A refresh that is still
// running when the next tick fires causes that tick to be skipped.
type Refresher struct {
	store    *Store
	cron     *cron.Cron
	log      *zap.Logger
	schedule string
	timeout  time.Duration
}

// NewRefresher registers the refresh job. schedule accepts standard five
// field specs as well as descriptors such as "@hourly" or "@every 30s".
func NewRefresher(store *Store, schedule string, timeout time.Duration, log *zap.Logger) (*Refresher, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Refresher{
		store:    store,
		log:      log.With(zap.String("component", "refresher")),
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("catalog refresh schedule %q: %w", schedule, err)
	}
	r.log.Info("refresh job registered", zap.String("schedule", schedule))
	return r, nil
}

func (r *Refresher) run() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	// Failures are already logged by the store.
	_, _ = r.store.Refresh(ctx)
}

func (r *Refresher) Start() {
	r.cron.Start()
	r.log.Info("refresher started")
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info("refresher stopped")
}

// Next reports when the next refresh is due. It is zero until Start.
func (r *Refresher) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

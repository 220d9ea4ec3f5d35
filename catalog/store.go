package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"go.uber.org/zap"
)

// Store holds the last good catalog snapshot. Snapshot never returns nil;
// before the first successful refresh it is empty.
type Store struct {
	src  Source
	log  *zap.Logger
	now  func() time.Time
	snap atomic.Pointer[market.Snapshot]

	seq atomic.Uint64

	mu      sync.Mutex
	applied uint64
	hooks   []func(*market.Snapshot)
}

type StoreOption func(*Store)

func WithLogger(log *zap.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

var _ market.PriceSource = (*Store)(nil)

func NewStore(src Source, opts ...StoreOption) *Store {
	s := &Store{
		src: src,
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(market.NewSnapshot(nil, time.Time{}))
	return s
}

func (s *Store) Snapshot() *market.Snapshot {
	return s.snap.Load()
}

// OnUpdate registers fn to run after every applied snapshot. Hooks run on
// the refreshing goroutine.
func (s *Store) OnUpdate(fn func(*market.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Refresh fetches a new listing and, if it is usable, makes it current. On
// failure the previous snapshot stays in place and the returned error wraps
// ErrUnavailable. A fetch that finishes after a later-started fetch has
// already been applied is dropped and returns the current snapshot.
func (s *Store) Refresh(ctx context.Context) (*market.Snapshot, error) {
	seq := s.seq.Add(1)

	list, err := s.src.Fetch(ctx)
	if err != nil && !errors.Is(err, ErrUnavailable) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err == nil {
		err = validate(list)
	}
	if err != nil {
		s.log.Warn("catalog refresh failed, keeping last snapshot",
			zap.Uint64("seq", seq),
			zap.Int("instruments", s.Snapshot().Len()),
			zap.Error(err))
		return s.Snapshot(), err
	}

	snap := market.NewSnapshot(list, s.now())

	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		s.log.Debug("discarding superseded catalog fetch", zap.Uint64("seq", seq))
		return s.Snapshot(), nil
	}
	s.applied = seq
	s.snap.Store(snap)
	hooks := make([]func(*market.Snapshot), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	s.log.Info("catalog refreshed", zap.Uint64("seq", seq), zap.Int("instruments", snap.Len()))
	for _, fn := range hooks {
		fn(snap)
	}
	return snap, nil
}

func validate(list []market.Instrument) error {
	for i, in := range list {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("%w: instrument %d: %w", ErrUnavailable, i, err)
		}
	}
	return nil
}

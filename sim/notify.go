package sim

import (
	"sync"
	"time"

	"github.com/rustyeddy/papertrade/journal"
)

type EventKind string

const (
	// TradeExecuted follows every successful Buy or Sell.
	TradeExecuted EventKind = "trade"
	// PricesUpdated follows every applied catalog snapshot.
	PricesUpdated EventKind = "prices"
)

// Event tells subscribers that engine state changed. Subscribers are expected
// to re-query the engine rather than reconstruct state from events.
type Event struct {
	Kind        EventKind            `json:"kind"`
	Transaction *journal.Transaction `json:"transaction,omitempty"`
	Time        time.Time            `json:"time"`
}

// CancelFunc ends a subscription and closes its channel. Safe to call twice.
type CancelFunc func()

const subscriberBuffer = 16

type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]chan Event)}
}

func (n *notifier) subscribe() (<-chan Event, CancelFunc) {
	ch := make(chan Event, subscriberBuffer)

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

// publish never blocks; a subscriber whose buffer is full misses the event.
func (n *notifier) publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (n *notifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

package services

import (
	"sync"
	"time"
)

// Dashboard refresh reasons pushed to connected admin dashboards.
const (
	EventStockInit         = "stock.init"
	EventHistoryDeleteAll  = "history.delete_all"
	EventHistoryDeleteUser = "history.delete_user"
	EventHistoryDeleteLog  = "history.delete_log"
	EventHistoryAddUser    = "history.add_user"
	EventHistoryUpdateLog  = "history.update_log"
	EventAdminConsume      = "admin.consume"
)

// DashboardEvent is one refresh notification.
type DashboardEvent struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// DashboardBroker fans dashboard events out to subscribed SSE streams.
// Slow subscribers are skipped, not blocked on: a dashboard that misses
// an event refreshes on the next one.
type DashboardBroker struct {
	mu          sync.Mutex
	subscribers map[chan DashboardEvent]struct{}
}

func NewDashboardBroker() *DashboardBroker {
	return &DashboardBroker{
		subscribers: make(map[chan DashboardEvent]struct{}),
	}
}

// Dashboard is the process-scoped broker, constructed at startup along
// with the other process state.
var Dashboard = NewDashboardBroker()

// Subscribe registers a new stream and returns its channel plus an
// unsubscribe func.
func (b *DashboardBroker) Subscribe() (<-chan DashboardEvent, func()) {
	ch := make(chan DashboardEvent, 8)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish sends a refresh reason to every subscriber without blocking.
func (b *DashboardBroker) Publish(reason string) {
	ev := DashboardEvent{Reason: reason, At: time.Now().UTC()}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports connected dashboards.
func (b *DashboardBroker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

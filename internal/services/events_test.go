package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDashboardBrokerPublishSubscribe(t *testing.T) {
	b := NewDashboardBroker()

	ch, cancel := b.Subscribe()
	defer cancel()
	assert.Equal(t, 1, b.SubscriberCount())

	b.Publish(EventAdminConsume)

	select {
	case ev := <-ch:
		assert.Equal(t, EventAdminConsume, ev.Reason)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for dashboard event")
	}
}

func TestDashboardBrokerSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewDashboardBroker()

	_, cancel := b.Subscribe()
	defer cancel()

	// Overflow the buffered channel; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(EventStockInit)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestDashboardBrokerUnsubscribe(t *testing.T) {
	b := NewDashboardBroker()

	ch, cancel := b.Subscribe()
	cancel()
	assert.Equal(t, 0, b.SubscriberCount())

	// Channel is closed after cancel.
	_, open := <-ch
	assert.False(t, open)

	// Double cancel is safe.
	cancel()
}

func TestRuntimeErrorRingIsBounded(t *testing.T) {
	ResetRuntimeErrors()
	defer ResetRuntimeErrors()

	for i := 0; i < runtimeErrorCapacity+10; i++ {
		RecordRuntimeError("mail", assert.AnError)
	}

	errs := RecentRuntimeErrors()
	assert.Len(t, errs, runtimeErrorCapacity)
	assert.Equal(t, "mail", errs[0].Source)
}

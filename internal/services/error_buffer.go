package services

import (
	"sync"
	"time"
)

// RuntimeError is one captured background failure, typically from the
// mailer. Kept in a bounded ring so the admin surface can show recent
// problems without unbounded growth.
type RuntimeError struct {
	Source     string    `json:"source"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

const runtimeErrorCapacity = 50

var runtimeErrors = struct {
	mu      sync.Mutex
	entries []RuntimeError
}{}

// RecordRuntimeError appends to the ring, evicting the oldest entry when
// full.
func RecordRuntimeError(source string, err error) {
	if err == nil {
		return
	}

	runtimeErrors.mu.Lock()
	defer runtimeErrors.mu.Unlock()

	runtimeErrors.entries = append(runtimeErrors.entries, RuntimeError{
		Source:     source,
		Message:    err.Error(),
		OccurredAt: time.Now().UTC(),
	})
	if len(runtimeErrors.entries) > runtimeErrorCapacity {
		runtimeErrors.entries = runtimeErrors.entries[len(runtimeErrors.entries)-runtimeErrorCapacity:]
	}
}

// RecentRuntimeErrors returns a copy of the ring, newest last.
func RecentRuntimeErrors() []RuntimeError {
	runtimeErrors.mu.Lock()
	defer runtimeErrors.mu.Unlock()

	out := make([]RuntimeError, len(runtimeErrors.entries))
	copy(out, runtimeErrors.entries)
	return out
}

// ResetRuntimeErrors clears the ring. Used by tests.
func ResetRuntimeErrors() {
	runtimeErrors.mu.Lock()
	defer runtimeErrors.mu.Unlock()
	runtimeErrors.entries = nil
}

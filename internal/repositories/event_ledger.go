package repositories

import (
	"context"
	"sync"
	"time"
)

// ProcessedEventLedger records payment-provider event ids that have already
// been handled, so at-least-once webhook deliveries reconcile exactly once.
type ProcessedEventLedger interface {
	// MarkProcessed records the event id and reports whether this was the
	// first time it was seen.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	// Forget removes the record for an event id. Callers release a mark when
	// handling the event failed, so the provider's redelivery is processed
	// instead of short-circuited as a duplicate.
	Forget(ctx context.Context, eventID string) error
}

// MemoryEventLedger is an in-memory ProcessedEventLedger. Entries older than
// the TTL are dropped lazily on the next mark.
type MemoryEventLedger struct {
	ttl  time.Duration
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryEventLedger creates a new instance of MemoryEventLedger.
func NewMemoryEventLedger(ttl time.Duration) *MemoryEventLedger {
	return &MemoryEventLedger{
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

// MarkProcessed records the event id, reporting whether it was new.
func (l *MemoryEventLedger) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for id, at := range l.seen {
		if now.Sub(at) > l.ttl {
			delete(l.seen, id)
		}
	}
	if _, ok := l.seen[eventID]; ok {
		return false, nil
	}
	l.seen[eventID] = now
	return true, nil
}

// Forget removes the record for an event id.
func (l *MemoryEventLedger) Forget(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.seen, eventID)
	return nil
}

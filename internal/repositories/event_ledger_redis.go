package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dedup key layout and retention for processed webhook events.
const (
	keyDedupWebhook  = "dedup:webhook:%s"
	DefaultLedgerTTL = 48 * time.Hour
)

// RedisEventLedger is a Redis-backed ProcessedEventLedger. SETNX with a TTL
// gives an atomic first-writer-wins mark that survives restarts.
type RedisEventLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEventLedger creates a new instance of RedisEventLedger.
func NewRedisEventLedger(client *redis.Client, ttl time.Duration) *RedisEventLedger {
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	return &RedisEventLedger{
		client: client,
		ttl:    ttl,
	}
}

// MarkProcessed records the event id, reporting whether it was new.
func (l *RedisEventLedger) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	first, err := l.client.SetNX(ctx, fmt.Sprintf(keyDedupWebhook, eventID), 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event %s processed: %w", eventID, err)
	}
	return first, nil
}

// Forget removes the record for an event id.
func (l *RedisEventLedger) Forget(ctx context.Context, eventID string) error {
	if err := l.client.Del(ctx, fmt.Sprintf(keyDedupWebhook, eventID)).Err(); err != nil {
		return fmt.Errorf("failed to forget event %s: %w", eventID, err)
	}
	return nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "tdsbot:update:"

// Deduplicator marks delivery keys with SETNX so redeliveries are dropped
// across instances.
type Deduplicator struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewDeduplicator remembers keys for ttl.
func NewDeduplicator(client goredis.UniversalClient, ttl time.Duration) *Deduplicator {
	return &Deduplicator{client: client, ttl: ttl}
}

// MarkProcessed reports true the first time a key is seen.
func (d *Deduplicator) MarkProcessed(ctx context.Context, key string) (bool, error) {
	fresh, err := d.client.SetNX(ctx, dedupKeyPrefix+key, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark update processed: %w", err)
	}
	return fresh, nil
}

package eventbus

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream envelopes are appended to.
const DefaultStream = "tdsbot:events"

// RedisStreamPublisher appends envelopes to a capped Redis stream.
type RedisStreamPublisher struct {
	client goredis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client goredis.UniversalClient, stream string, maxLen int64) *RedisStreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, envelope Envelope) error {
	args := &goredis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":          envelope.ID,
			"topic":       envelope.Topic,
			"occurred_at": envelope.OccurredAt.Format(time.RFC3339Nano),
			"payload":     string(envelope.Payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

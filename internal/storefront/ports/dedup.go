package ports

import "context"

// UpdateDeduplicator ensures a transport redelivery is handled only once.
type UpdateDeduplicator interface {
	// MarkProcessed records the key and reports whether it was seen for the first time.
	MarkProcessed(ctx context.Context, key string) (bool, error)
}

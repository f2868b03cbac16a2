package repository

import (
	"context"

	"github.com/shreyas/tweetsched/scheduler/post"
)

// StoreClient is a key/range-query store of scheduled posts keyed by (account, scheduledTime).
// Implementations return post.ErrNotFound for missing keys and raw errors otherwise;
// PostsRepository classifies them.
type StoreClient interface {
	// Put writes p, replacing any entry with the same key, and returns the replaced entry (nil when new)
	Put(ctx context.Context, p post.ScheduledPost) (*post.ScheduledPost, error)

	// Get returns the entry for the key
	Get(ctx context.Context, account string, scheduledTime int64) (*post.ScheduledPost, error)

	// Query returns the unposted entries of account inside r, ordered by scheduled time
	Query(ctx context.Context, account string, r post.QueryRange) ([]post.ScheduledPost, error)

	// SetPosted flags an existing entry as posted with the publisher's identifier
	SetPosted(ctx context.Context, account string, scheduledTime int64, remotePostID string) error

	// Delete removes an existing entry
	Delete(ctx context.Context, account string, scheduledTime int64) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error
}

package repository

import (
	"context"

	"github.com/shreyas/tweetsched/scheduler/post"
)

// CreateResult is what a scheduling write produced
type CreateResult struct {
	Post post.ScheduledPost
	// Previous is the entry that was replaced, nil when the post is new
	Previous *post.ScheduledPost
	// Moved is the entry Reschedule took from another time, nil otherwise
	Moved *post.ScheduledPost
}

// Replaced reports whether the write overwrote an existing entry
func (r CreateResult) Replaced() bool {
	return r.Previous != nil
}

// PostsRepositoryInterface defines the scheduling operations on top of a StoreClient
type PostsRepositoryInterface interface {
	// Create validates and writes a pending post, replacing any entry at the same time
	Create(ctx context.Context, account string, scheduledTime int64, text string) (CreateResult, error)

	// QueryDue returns unposted posts of account scheduled inside the optional bounds
	QueryDue(ctx context.Context, account string, from, to *int64) ([]post.ScheduledPost, error)

	// MarkPosted records a confirmed publish; safe to repeat
	MarkPosted(ctx context.Context, account string, scheduledTime int64, remotePostID string) error

	// Delete removes a post that has not been posted yet
	Delete(ctx context.Context, account string, scheduledTime int64) error

	// Reschedule moves a post that has not been posted yet to newTime with new text.
	// A posted entry at newTime is never overwritten.
	Reschedule(ctx context.Context, account string, oldTime, newTime int64, text string) (CreateResult, error)

	// Ping checks if the underlying store is reachable
	Ping(ctx context.Context) error
}

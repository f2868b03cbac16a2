package repository

import "context"

// AttemptEvent records one publish attempt made by a sweep
type AttemptEvent struct {
	Account       string
	ScheduledTime int64
	AttemptTime   int64
	Success       bool
	RemotePostID  string
	Error         string
	// TimeTakenMillis indicates how long the attempt took in milliseconds
	TimeTakenMillis int64
}

// AttemptEventRecord is an AttemptEvent read back with its stream id
type AttemptEventRecord struct {
	ID string
	AttemptEvent
}

// AttemptEventsQuery filters ListAttemptEvents; zero values mean no filter and the default limit
type AttemptEventsQuery struct {
	Account string
	Limit   int64
}

// AttemptEventsRepositoryInterface defines operations for managing publish attempt events
type AttemptEventsRepositoryInterface interface {
	// SaveAttemptEvent appends an attempt event to the Redis stream
	SaveAttemptEvent(ctx context.Context, event AttemptEvent) error

	// ListAttemptEvents returns the most recent attempt events, newest first
	ListAttemptEvents(ctx context.Context, query AttemptEventsQuery) ([]AttemptEventRecord, error)
}

package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const defaultAttemptEventsLimit = 50

// AttemptEventsRepository handles Redis operations for publish attempt events
type AttemptEventsRepository struct {
	client *redis.Client
}

// NewAttemptEventsRepository creates a new AttemptEventsRepository
func NewAttemptEventsRepository(client *redis.Client) *AttemptEventsRepository {
	return &AttemptEventsRepository{client: client}
}

// SaveAttemptEvent appends an attempt event to the capped Redis stream
func (r *AttemptEventsRepository) SaveAttemptEvent(ctx context.Context, event AttemptEvent) error {
	values := map[string]interface{}{
		"account":        event.Account,
		"scheduled_time": event.ScheduledTime,
		"attempt_time":   event.AttemptTime,
		"success":        strconv.FormatBool(event.Success),
		"remote_post_id": event.RemotePostID,
		"error":          event.Error,
		"time_taken_ms":  event.TimeTakenMillis,
	}

	_, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: attemptEventsKey,
		MaxLen: attemptEventsMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to save attempt event to redis stream: %w", err)
	}

	return nil
}

// ListAttemptEvents walks the stream backwards in batches until enough matching events are found
func (r *AttemptEventsRepository) ListAttemptEvents(ctx context.Context, query AttemptEventsQuery) ([]AttemptEventRecord, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultAttemptEventsLimit
	}

	batch := limit
	if query.Account != "" && batch < 100 {
		batch = 100
	}

	records := make([]AttemptEventRecord, 0, limit)
	start := "+"
	lastID := ""

	for int64(len(records)) < limit {
		msgs, err := r.client.XRevRangeN(ctx, attemptEventsKey, start, "-", batch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read attempt events from redis stream: %w", err)
		}

		fresh := 0
		for _, msg := range msgs {
			// batches after the first start at the last id already seen
			if msg.ID == lastID {
				continue
			}
			fresh++

			record, err := attemptEventFromMessage(msg)
			if err != nil {
				return nil, err
			}
			if query.Account != "" && record.Account != query.Account {
				continue
			}

			records = append(records, record)
			if int64(len(records)) == limit {
				break
			}
		}

		if fresh == 0 || int64(len(msgs)) < batch {
			break
		}
		lastID = msgs[len(msgs)-1].ID
		start = lastID
	}

	return records, nil
}

func attemptEventFromMessage(msg redis.XMessage) (AttemptEventRecord, error) {
	record := AttemptEventRecord{ID: msg.ID}

	var err error
	if record.ScheduledTime, err = int64Field(msg.Values, "scheduled_time"); err != nil {
		return AttemptEventRecord{}, err
	}
	if record.AttemptTime, err = int64Field(msg.Values, "attempt_time"); err != nil {
		return AttemptEventRecord{}, err
	}
	if record.TimeTakenMillis, err = int64Field(msg.Values, "time_taken_ms"); err != nil {
		return AttemptEventRecord{}, err
	}

	record.Account = stringField(msg.Values, "account")
	record.RemotePostID = stringField(msg.Values, "remote_post_id")
	record.Error = stringField(msg.Values, "error")
	record.Success = stringField(msg.Values, "success") == "true"

	return record, nil
}

func stringField(values map[string]interface{}, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}

func int64Field(values map[string]interface{}, key string) (int64, error) {
	raw := stringField(values, key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s in attempt event: %w", key, err)
	}
	return v, nil
}

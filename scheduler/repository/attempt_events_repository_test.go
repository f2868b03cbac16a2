package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupAttemptEventsRepo(t *testing.T) (*AttemptEventsRepository, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewAttemptEventsRepository(client)

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return repo, cleanup
}

func TestAttemptEventsRepository_ListAttemptEvents_ReturnsEventsInReverseChronologicalOrder(t *testing.T) {
	repo, cleanup := setupAttemptEventsRepo(t)
	defer cleanup()

	ctx := context.Background()

	events := []AttemptEvent{
		{
			Account:         "crc",
			ScheduledTime:   100,
			AttemptTime:     150,
			Success:         true,
			RemotePostID:    "r-1",
			TimeTakenMillis: 25,
		},
		{
			Account:         "crc",
			ScheduledTime:   200,
			AttemptTime:     250,
			Success:         false,
			Error:           "publish failed: 503",
			TimeTakenMillis: 40,
		},
		{
			Account:         "crc",
			ScheduledTime:   300,
			AttemptTime:     350,
			Success:         true,
			RemotePostID:    "r-3",
			TimeTakenMillis: 30,
		},
	}

	for _, event := range events {
		if err := repo.SaveAttemptEvent(ctx, event); err != nil {
			t.Fatalf("failed to save attempt event: %v", err)
		}
	}

	records, err := repo.ListAttemptEvents(ctx, AttemptEventsQuery{})
	if err != nil {
		t.Fatalf("ListAttemptEvents returned error: %v", err)
	}

	if len(records) != len(events) {
		t.Fatalf("expected %d records, got %d", len(events), len(records))
	}

	for i, record := range records {
		expected := events[len(events)-1-i]
		if record.AttemptEvent != expected {
			t.Errorf("record %d = %+v, want %+v", i, record.AttemptEvent, expected)
		}
		if record.ID == "" {
			t.Errorf("record %d should include stream id", i)
		}
	}
}

func TestAttemptEventsRepository_ListAttemptEvents_AppliesLimitAndFilters(t *testing.T) {
	repo, cleanup := setupAttemptEventsRepo(t)
	defer cleanup()

	ctx := context.Background()

	// interleave two accounts, with far more "crc" events than one batch holds
	for i := 0; i < 150; i++ {
		event := AttemptEvent{Account: "crc", ScheduledTime: int64(i), AttemptTime: int64(1000 + i), Success: true}
		if err := repo.SaveAttemptEvent(ctx, event); err != nil {
			t.Fatalf("failed to save attempt event: %v", err)
		}
		if i%50 == 0 {
			other := AttemptEvent{Account: "other", ScheduledTime: int64(i), AttemptTime: int64(1000 + i)}
			if err := repo.SaveAttemptEvent(ctx, other); err != nil {
				t.Fatalf("failed to save attempt event: %v", err)
			}
		}
	}

	records, err := repo.ListAttemptEvents(ctx, AttemptEventsQuery{Account: "other", Limit: 2})
	if err != nil {
		t.Fatalf("ListAttemptEvents returned error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, record := range records {
		if record.Account != "other" {
			t.Fatalf("expected only other records, got %s", record.Account)
		}
	}
	if records[0].AttemptTime <= records[1].AttemptTime {
		t.Errorf("expected records to be ordered by recency")
	}

	// all three "other" events live across more than one batch
	all, err := repo.ListAttemptEvents(ctx, AttemptEventsQuery{Account: "other", Limit: 10})
	if err != nil {
		t.Fatalf("ListAttemptEvents returned error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 other records, got %d", len(all))
	}

	seen := make(map[string]bool)
	for _, record := range all {
		if seen[record.ID] {
			t.Errorf("record %s returned twice", record.ID)
		}
		seen[record.ID] = true
	}
}

func TestAttemptEventsRepository_ListAttemptEvents_DefaultLimit(t *testing.T) {
	repo, cleanup := setupAttemptEventsRepo(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < defaultAttemptEventsLimit+5; i++ {
		_ = repo.SaveAttemptEvent(ctx, AttemptEvent{Account: "crc", Error: fmt.Sprintf("e%d", i)})
	}

	records, err := repo.ListAttemptEvents(ctx, AttemptEventsQuery{})
	if err != nil {
		t.Fatalf("ListAttemptEvents returned error: %v", err)
	}
	if len(records) != defaultAttemptEventsLimit {
		t.Errorf("expected %d records, got %d", defaultAttemptEventsLimit, len(records))
	}
}

func TestAttemptEventsRepository_ListAttemptEvents_EmptyResults(t *testing.T) {
	repo, cleanup := setupAttemptEventsRepo(t)
	defer cleanup()

	records, err := repo.ListAttemptEvents(context.Background(), AttemptEventsQuery{})
	if err != nil {
		t.Fatalf("ListAttemptEvents returned error: %v", err)
	}

	if len(records) != 0 {
		t.Fatalf("expected empty results, got %d", len(records))
	}
}

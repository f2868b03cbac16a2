package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shreyas/tweetsched/scheduler/repository"
)

func setupAttemptsForTests(t *testing.T) (*repository.AttemptEventsRepository, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return repository.NewAttemptEventsRepository(client), cleanup
}

func TestTrackAttempts_ReturnsRecentEvents(t *testing.T) {
	repo, cleanup := setupAttemptsForTests(t)
	defer cleanup()

	ctx := context.Background()

	events := []repository.AttemptEvent{
		{
			Account:         "crc",
			ScheduledTime:   100,
			AttemptTime:     150,
			Success:         true,
			RemotePostID:    "r-1",
			TimeTakenMillis: 30,
		},
		{
			Account:         "crc",
			ScheduledTime:   200,
			AttemptTime:     260,
			Success:         false,
			Error:           "publish failed: status 503: Over capacity",
			TimeTakenMillis: 45,
		},
	}

	for _, event := range events {
		if err := repo.SaveAttemptEvent(ctx, event); err != nil {
			t.Fatalf("failed to seed attempt event: %v", err)
		}
	}

	h := NewHandler(&mockPostsRepo{}, &mockPublisher{}, &mockSweeper{}, repo, "crc")
	w := serve(t, h.TrackAttempts, http.MethodGet, "/v1/track/attempts?limit=5", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp attemptEventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Count != len(events) {
		t.Fatalf("expected count %d, got %d", len(events), resp.Count)
	}

	latest := resp.Attempts[0]
	if latest.ScheduledTime != 200 || latest.Success || latest.Error == "" {
		t.Errorf("expected the failed attempt first, got %+v", latest)
	}
	if latest.ID == "" {
		t.Errorf("expected stream id in response")
	}
	if resp.Attempts[1].RemotePostID != "r-1" {
		t.Errorf("expected remote post id r-1, got %q", resp.Attempts[1].RemotePostID)
	}
}

func TestTrackAttempts_FiltersByAccount(t *testing.T) {
	repo, cleanup := setupAttemptsForTests(t)
	defer cleanup()

	ctx := context.Background()
	_ = repo.SaveAttemptEvent(ctx, repository.AttemptEvent{Account: "crc", ScheduledTime: 1})
	_ = repo.SaveAttemptEvent(ctx, repository.AttemptEvent{Account: "other", ScheduledTime: 2})

	h := NewHandler(&mockPostsRepo{}, &mockPublisher{}, &mockSweeper{}, repo, "crc")
	w := serve(t, h.TrackAttempts, http.MethodGet, "/v1/track/attempts?account=other", nil)

	var resp attemptEventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Count != 1 || resp.Attempts[0].Account != "other" {
		t.Errorf("expected one attempt for other, got %+v", resp)
	}
}

func TestTrackAttempts_InvalidLimit(t *testing.T) {
	repo, cleanup := setupAttemptsForTests(t)
	defer cleanup()

	h := NewHandler(&mockPostsRepo{}, &mockPublisher{}, &mockSweeper{}, repo, "crc")
	w := serve(t, h.TrackAttempts, http.MethodGet, "/v1/track/attempts?limit=-1", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if detail := decodeError(t, w); detail.Code != "INVALID_REQUEST" || detail.Field != "limit" {
		t.Errorf("unexpected error detail %+v", detail)
	}
}

func TestTrackAttempts_Unavailable(t *testing.T) {
	h := newTestHandler(nil, nil, nil)
	w := serve(t, h.TrackAttempts, http.MethodGet, "/v1/track/attempts", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if got := decodeError(t, w).Code; got != "ATTEMPTS_UNAVAILABLE" {
		t.Errorf("expected ATTEMPTS_UNAVAILABLE, got %s", got)
	}
}

func Test_parseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"", defaultAttemptsLimit, false},
		{"10", 10, false},
		{"1000", maxAttemptsLimit, false},
		{"0", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseLimit(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLimit(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

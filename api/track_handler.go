package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/scheduler/repository"
)

const (
	defaultAttemptsLimit = 50
	maxAttemptsLimit     = 200
)

// attemptEventResponse represents a single publish attempt in the API response.
type attemptEventResponse struct {
	ID              string `json:"id"`
	Account         string `json:"account"`
	ScheduledTime   int64  `json:"scheduledTime"`
	AttemptTime     int64  `json:"attemptTime"`
	Success         bool   `json:"success"`
	RemotePostID    string `json:"remotePostId,omitempty"`
	Error           string `json:"error,omitempty"`
	TimeTakenMillis int64  `json:"timeTakenMs"`
}

// attemptEventsResponse represents the payload returned by the attempts tracking endpoint.
type attemptEventsResponse struct {
	Count    int                    `json:"count"`
	Attempts []attemptEventResponse `json:"attempts"`
}

// TrackAttempts handles GET /v1/track/attempts and returns recent publish attempts.
func (h *Handler) TrackAttempts(c *gin.Context) {
	if h.attempts == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{
				Code:    "ATTEMPTS_UNAVAILABLE",
				Message: "Attempt events are recorded only when Redis is configured",
			},
		})
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		respondInvalidRequest(c, err.Error(), "limit")
		return
	}

	events, err := h.attempts.ListAttemptEvents(c.Request.Context(), repository.AttemptEventsQuery{
		Account: c.Query("account"),
		Limit:   limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "ATTEMPT_EVENTS_QUERY_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	responses := make([]attemptEventResponse, len(events))
	for i, event := range events {
		responses[i] = attemptEventResponse{
			ID:              event.ID,
			Account:         event.Account,
			ScheduledTime:   event.ScheduledTime,
			AttemptTime:     event.AttemptTime,
			Success:         event.Success,
			RemotePostID:    event.RemotePostID,
			Error:           event.Error,
			TimeTakenMillis: event.TimeTakenMillis,
		}
	}

	c.JSON(http.StatusOK, attemptEventsResponse{
		Count:    len(responses),
		Attempts: responses,
	})
}

func parseLimit(raw string) (int64, error) {
	if raw == "" {
		return defaultAttemptsLimit, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}

	if value <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}

	if value > maxAttemptsLimit {
		return maxAttemptsLimit, nil
	}

	return value, nil
}

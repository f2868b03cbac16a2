package api

import (
	"github.com/shreyas/tweetsched/publisher"
	"github.com/shreyas/tweetsched/scheduler"
	"github.com/shreyas/tweetsched/scheduler/repository"
)

// Handler serves the HTTP operations; every collaborator is injected from main
type Handler struct {
	posts     repository.PostsRepositoryInterface
	publisher publisher.Publisher
	sweeper   scheduler.SweepWorkerInterface
	// attempts is nil when the attempt events stream is not available
	attempts repository.AttemptEventsRepositoryInterface

	// account is used when a request does not name one
	account string
}

// NewHandler creates a new Handler
func NewHandler(posts repository.PostsRepositoryInterface, pub publisher.Publisher, sweeper scheduler.SweepWorkerInterface, attempts repository.AttemptEventsRepositoryInterface, account string) *Handler {
	return &Handler{
		posts:     posts,
		publisher: pub,
		sweeper:   sweeper,
		attempts:  attempts,
		account:   account,
	}
}

func (h *Handler) accountOr(requested string) string {
	if requested != "" {
		return requested
	}
	return h.account
}

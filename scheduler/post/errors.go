package post

import (
	"context"
	"errors"
	"fmt"
)

// ErrValidation is the parent of every input validation failure
var ErrValidation = errors.New("validation error")

var (
	ErrInvalidText    = fmt.Errorf("%w: invalid or missing text", ErrValidation)
	ErrInvalidTime    = fmt.Errorf("%w: invalid or missing scheduled time", ErrValidation)
	ErrMissingAccount = fmt.Errorf("%w: invalid or missing account", ErrValidation)

	// ErrPastTime is an ErrInvalidTime for posts scheduled too far in the past
	ErrPastTime = fmt.Errorf("%w: cannot schedule a post in the past", ErrInvalidTime)
)

var (
	// ErrInvalidRange is returned when toTime is before fromTime
	ErrInvalidRange = errors.New("toTime cannot be before fromTime")

	// ErrStoreUnavailable wraps any failure talking to the store
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned when no scheduled post exists for (account, scheduledTime)
	ErrNotFound = errors.New("scheduled post not found")

	// ErrAlreadyPosted is returned when a posted entry would be edited or deleted
	ErrAlreadyPosted = errors.New("scheduled post already posted")

	// ErrPublish wraps any failure reported by the publisher
	ErrPublish = errors.New("publish failed")

	// ErrTimeout is returned when a store or publish call exceeded its deadline
	ErrTimeout = errors.New("operation timed out")
)

// Classify wraps err with kind, or with ErrTimeout when the call ran out of time.
// Errors that already carry a domain kind are returned unchanged.
func Classify(kind error, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyPosted) || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

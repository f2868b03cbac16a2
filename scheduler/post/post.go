package post

import (
	"strconv"
	"strings"
	"time"
)

// PastTolerance is how far behind now a new post may still be scheduled
const PastTolerance = 2 * time.Minute

// ScheduledPost is a post waiting to be, or already, published for an account.
// (Account, ScheduledTime) identifies it; times are epoch milliseconds.
type ScheduledPost struct {
	Account       string `json:"account" dynamodbav:"account"`
	ScheduledTime int64  `json:"scheduledTime" dynamodbav:"scheduledTime"`
	ModifiedTime  int64  `json:"modifiedTime" dynamodbav:"modifiedTime"`
	Text          string `json:"text" dynamodbav:"text"`
	IsPosted      bool   `json:"isPosted" dynamodbav:"isPosted"`
	RemotePostID  string `json:"remotePostId,omitempty" dynamodbav:"remotePostId,omitempty"`
}

// NewScheduledPost validates the input and returns an unposted entry stamped with now
func NewScheduledPost(account string, scheduledTime int64, text string, now time.Time) (*ScheduledPost, error) {
	if err := Validate(account, scheduledTime, text, now); err != nil {
		return nil, err
	}

	return &ScheduledPost{
		Account:       account,
		ScheduledTime: scheduledTime,
		ModifiedTime:  now.UnixMilli(),
		Text:          text,
		IsPosted:      false,
	}, nil
}

// Validate checks the fields a caller supplies when scheduling a post
func Validate(account string, scheduledTime int64, text string, now time.Time) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidText
	}
	if scheduledTime == 0 {
		return ErrInvalidTime
	}
	if scheduledTime < now.Add(-PastTolerance).UnixMilli() {
		return ErrPastTime
	}
	if account == "" {
		return ErrMissingAccount
	}
	return nil
}

// ParseTime parses an epoch millisecond timestamp supplied as text
func ParseTime(raw string) (int64, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms == 0 {
		return 0, ErrInvalidTime
	}
	return ms, nil
}

// MarkedPosted returns a copy flagged as posted with the publisher's identifier.
// ModifiedTime is left alone so that marking twice yields the same entry.
func (p ScheduledPost) MarkedPosted(remotePostID string) ScheduledPost {
	p.IsPosted = true
	p.RemotePostID = remotePostID
	return p
}

// Due returns the scheduled time as a time.Time
func (p ScheduledPost) Due() time.Time {
	return time.UnixMilli(p.ScheduledTime)
}

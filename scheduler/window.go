package scheduler

import "time"

const (
	// DefaultLookback is how far behind now a sweep still picks up posts
	DefaultLookback = 7 * time.Minute
	// DefaultLookahead lets a sweep publish posts that are due shortly
	DefaultLookahead = 1 * time.Minute
)

// Window is an inclusive range of scheduled times in epoch milliseconds
type Window struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// DueWindow returns [now-lookback, now+lookahead]
func DueWindow(now time.Time, lookback, lookahead time.Duration) Window {
	return Window{
		From: now.Add(-lookback).UnixMilli(),
		To:   now.Add(lookahead).UnixMilli(),
	}
}

// Contains reports whether ms falls inside the window
func (w Window) Contains(ms int64) bool {
	return ms >= w.From && ms <= w.To
}

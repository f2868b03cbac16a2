package post

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryRange bounds a query on scheduled time. A nil bound leaves that side open;
// present bounds are inclusive.
type QueryRange struct {
	From *int64
	To   *int64
}

// NewQueryRange rejects ranges whose upper bound is before the lower bound
func NewQueryRange(from, to *int64) (QueryRange, error) {
	if from != nil && to != nil && *to < *from {
		return QueryRange{}, ErrInvalidRange
	}
	return QueryRange{From: from, To: to}, nil
}

// Contains reports whether ms falls inside the range
func (r QueryRange) Contains(ms int64) bool {
	if r.From != nil && ms < *r.From {
		return false
	}
	if r.To != nil && ms > *r.To {
		return false
	}
	return true
}

func (r QueryRange) String() string {
	return fmt.Sprintf("[%s, %s]", boundString(r.From, "-inf"), boundString(r.To, "+inf"))
}

// ParseBound parses an optional range bound. Empty, non-numeric and zero values
// are treated as absent.
func ParseBound(raw string) *int64 {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms == 0 {
		return nil
	}
	return &ms
}

func boundString(b *int64, open string) string {
	if b == nil {
		return open
	}
	return strconv.FormatInt(*b, 10)
}

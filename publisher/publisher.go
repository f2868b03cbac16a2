package publisher

import (
	"context"
	"encoding/json"
)

// Result is what the remote API returned for a published post
type Result struct {
	// ID is the remote identifier of the post
	ID string `json:"id"`
	// Raw is the unmodified response body
	Raw json.RawMessage `json:"raw"`
}

// Publisher posts a text status to a remote service
type Publisher interface {
	Post(ctx context.Context, text string) (Result, error)
}

package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/shreyas/tweetsched/lib/env"
	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/scheduler/post"
)

const maxResponseBytes = 1 << 20

// TwitterOptions tunes the HTTP behaviour of TwitterClient
type TwitterOptions struct {
	BaseURL string
	// Timeout bounds one Post call including retries
	Timeout time.Duration
	// RetryMax is how many times a 429 response is retried
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// TwitterClient publishes through POST /2/tweets with OAuth 1.0a user context
type TwitterClient struct {
	httpClient *retryablehttp.Client
	baseURL    string
	timeout    time.Duration
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type apiErrorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewTwitterClient creates a client signing requests with creds
func NewTwitterClient(creds env.TwitterCredentials, opts TwitterOptions) *TwitterClient {
	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)

	client := retryablehttp.NewClient()
	client.HTTPClient = config.Client(oauth1.NoContext, token)
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}
	client.CheckRetry = retryOnlyRateLimited
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil // Disable retryablehttp's default logging

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twitter.com"
	}

	return &TwitterClient{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    opts.Timeout,
	}
}

// retryOnlyRateLimited retries 429 responses only. A rate-limited request created
// nothing, so sending it again cannot double-post; any other failure is left to the next sweep.
func retryOnlyRateLimited(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return false, err
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

// Post publishes text and returns the remote id with the raw response
func (c *TwitterClient) Post(ctx context.Context, text string) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(createTweetRequest{Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to encode request: %v", post.ErrPublish, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to create http request: %v", post.ErrPublish, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = post.Classify(post.ErrPublish, err)
		logger.Error("publish request failed", "error", err)
		return Result{}, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		err = post.Classify(post.ErrPublish, fmt.Errorf("failed to read response: %w", err))
		logger.Error("publish response unreadable", "statusCode", resp.StatusCode, "error", err)
		return Result{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("%w: status %d: %s", post.ErrPublish, resp.StatusCode, apiErrorDetail(raw))
		logger.Error("publish rejected", "statusCode", resp.StatusCode, "error", err)
		return Result{}, err
	}

	var created createTweetResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return Result{}, fmt.Errorf("%w: invalid response body: %v", post.ErrPublish, err)
	}
	if created.Data.ID == "" {
		return Result{}, fmt.Errorf("%w: response carries no post id", post.ErrPublish)
	}

	logger.Info("post published", "remotePostId", created.Data.ID, "statusCode", resp.StatusCode, "timeTakenMs", time.Since(start).Milliseconds())
	return Result{ID: created.Data.ID, Raw: json.RawMessage(raw)}, nil
}

// apiErrorDetail extracts a readable message from an API error body
func apiErrorDetail(raw []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		switch {
		case apiErr.Detail != "":
			return apiErr.Detail
		case len(apiErr.Errors) > 0 && apiErr.Errors[0].Message != "":
			return apiErr.Errors[0].Message
		case apiErr.Title != "":
			return apiErr.Title
		}
	}

	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return "empty response"
	}
	return text
}

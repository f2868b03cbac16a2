package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shreyas/tweetsched/publisher"
	"github.com/shreyas/tweetsched/scheduler/post"
)

func TestHandler_Invoke(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		publishErr     error
		expectedStatus int
		expectedError  string
		expectedData   interface{}
		expectedPosts  int
	}{
		{
			name:           "ping",
			body:           map[string]interface{}{"operation": "ping"},
			expectedStatus: http.StatusOK,
			expectedData:   "pong",
		},
		{
			name:           "create publishes the status",
			body:           map[string]interface{}{"operation": "create", "status": "hello"},
			expectedStatus: http.StatusOK,
			expectedPosts:  1,
		},
		{
			name:           "create without status",
			body:           map[string]interface{}{"operation": "create"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "create rejected by the publisher",
			body:           map[string]interface{}{"operation": "create", "status": "dup"},
			publishErr:     fmt.Errorf("%w: status 403: duplicate content", post.ErrPublish),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "PUBLISH_FAILED",
			expectedPosts:  1,
		},
		{
			name:           "create times out",
			body:           map[string]interface{}{"operation": "create", "status": "slow"},
			publishErr:     fmt.Errorf("%w: deadline", post.ErrTimeout),
			expectedStatus: http.StatusGatewayTimeout,
			expectedError:  "TIMEOUT",
			expectedPosts:  1,
		},
		{
			name:           "unrecognized operation",
			body:           map[string]interface{}{"operation": "delete"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "UNRECOGNIZED_OPERATION",
		},
		{
			name:           "missing operation",
			body:           map[string]interface{}{"status": "hello"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_REQUEST",
		},
		{
			name:           "malformed body",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{
				result: publisher.Result{ID: "1445880548472328192", Raw: json.RawMessage(`{"data":{"id":"1445880548472328192"}}`)},
				err:    tt.publishErr,
			}
			h := newTestHandler(nil, pub, nil)

			w := serve(t, h.Invoke, http.MethodPost, "/v1/invoke", tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if len(pub.texts) != tt.expectedPosts {
				t.Errorf("publisher called %d times, want %d", len(pub.texts), tt.expectedPosts)
			}

			if tt.expectedError != "" {
				if got := decodeError(t, w).Code; got != tt.expectedError {
					t.Errorf("expected error code %s, got %s", tt.expectedError, got)
				}
				return
			}

			var resp SuccessResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if tt.expectedData != nil && resp.Data != tt.expectedData {
				t.Errorf("data = %v, want %v", resp.Data, tt.expectedData)
			}
		})
	}
}

func TestHandler_PostNow(t *testing.T) {
	pub := &mockPublisher{result: publisher.Result{ID: "42", Raw: json.RawMessage(`{"data":{"id":"42","text":"hi"}}`)}}
	h := newTestHandler(nil, pub, nil)

	w := serve(t, h.PostNow, http.MethodPost, "/v1/posts", map[string]string{"status": "hi"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp postResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ID != "42" {
		t.Errorf("id = %q, want 42", resp.ID)
	}
	if len(resp.Response) == 0 {
		t.Errorf("expected the raw publisher response to be returned")
	}
	if len(pub.texts) != 1 || pub.texts[0] != "hi" {
		t.Errorf("published %v, want [hi]", pub.texts)
	}

	w = serve(t, h.PostNow, http.MethodPost, "/v1/posts", map[string]string{"status": " "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank status: expected 400, got %d", w.Code)
	}
	if detail := decodeError(t, w); detail.Field != "status" {
		t.Errorf("blank status: field = %q, want status", detail.Field)
	}
}

package routes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/api"
	"github.com/shreyas/tweetsched/publisher"
	"github.com/shreyas/tweetsched/scheduler"
	"github.com/shreyas/tweetsched/scheduler/post"
	"github.com/shreyas/tweetsched/scheduler/repository"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type stubPosts struct{ repository.PostsRepositoryInterface }

func (stubPosts) QueryDue(ctx context.Context, account string, from, to *int64) ([]post.ScheduledPost, error) {
	return []post.ScheduledPost{{Account: account, ScheduledTime: 1, Text: "x"}}, nil
}

type stubPublisher struct{}

func (stubPublisher) Post(ctx context.Context, text string) (publisher.Result, error) {
	return publisher.Result{ID: "1"}, nil
}

type stubSweeper struct{}

func (stubSweeper) Sweep(ctx context.Context) (scheduler.SweepReport, error) {
	return scheduler.SweepReport{}, nil
}

func newTestRouter(storeErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := api.NewHandler(stubPosts{}, stubPublisher{}, stubSweeper{}, nil, "crc")
	return Setup(h, stubPinger{err: storeErr}, "redis")
}

func TestSetup_Routes(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/health/deep", "", http.StatusOK},
		{http.MethodPost, "/v1/invoke", `{"operation":"ping"}`, http.StatusOK},
		{http.MethodPost, "/v1/posts", `{"status":"hi"}`, http.StatusCreated},
		{http.MethodPost, "/v1/sweep", "", http.StatusOK},
		{http.MethodGet, "/v1/scheduled?fromDate=1", "", http.StatusOK},
		{http.MethodGet, "/v1/track/attempts", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/v1/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSetup_DeepHealthUnhealthy(t *testing.T) {
	router := newTestRouter(errors.New("connection refused"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/deep", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"redis":"unreachable"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

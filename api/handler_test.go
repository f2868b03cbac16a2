package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shreyas/tweetsched/publisher"
	"github.com/shreyas/tweetsched/scheduler"
	"github.com/shreyas/tweetsched/scheduler/post"
	"github.com/shreyas/tweetsched/scheduler/repository"
)

// mockPostsRepo implements PostsRepositoryInterface and records the last call
type mockPostsRepo struct {
	createResult repository.CreateResult
	queryResult  []post.ScheduledPost
	err          error

	gotAccount      string
	gotTime, gotNew int64
	gotText         string
	gotFrom, gotTo  *int64
	createCalls     int
	queryCalls      int
	deleteCalls     int
	rescheduleCalls int
}

func (m *mockPostsRepo) Create(ctx context.Context, account string, scheduledTime int64, text string) (repository.CreateResult, error) {
	m.createCalls++
	m.gotAccount, m.gotTime, m.gotText = account, scheduledTime, text
	return m.createResult, m.err
}

func (m *mockPostsRepo) QueryDue(ctx context.Context, account string, from, to *int64) ([]post.ScheduledPost, error) {
	m.queryCalls++
	m.gotAccount, m.gotFrom, m.gotTo = account, from, to
	return m.queryResult, m.err
}

func (m *mockPostsRepo) MarkPosted(ctx context.Context, account string, scheduledTime int64, remotePostID string) error {
	return m.err
}

func (m *mockPostsRepo) Delete(ctx context.Context, account string, scheduledTime int64) error {
	m.deleteCalls++
	m.gotAccount, m.gotTime = account, scheduledTime
	return m.err
}

func (m *mockPostsRepo) Reschedule(ctx context.Context, account string, oldTime, newTime int64, text string) (repository.CreateResult, error) {
	m.rescheduleCalls++
	m.gotAccount, m.gotTime, m.gotNew, m.gotText = account, oldTime, newTime, text
	return m.createResult, m.err
}

func (m *mockPostsRepo) Ping(ctx context.Context) error {
	return m.err
}

// mockPublisher returns result or err and records the texts it was given
type mockPublisher struct {
	result publisher.Result
	err    error
	texts  []string
}

func (m *mockPublisher) Post(ctx context.Context, text string) (publisher.Result, error) {
	m.texts = append(m.texts, text)
	return m.result, m.err
}

// mockSweeper returns a fixed report
type mockSweeper struct {
	report scheduler.SweepReport
	err    error
	calls  int
}

func (m *mockSweeper) Sweep(ctx context.Context) (scheduler.SweepReport, error) {
	m.calls++
	return m.report, m.err
}

func newTestHandler(repo *mockPostsRepo, pub *mockPublisher, sweeper *mockSweeper) *Handler {
	if repo == nil {
		repo = &mockPostsRepo{}
	}
	if pub == nil {
		pub = &mockPublisher{}
	}
	if sweeper == nil {
		sweeper = &mockSweeper{}
	}
	return NewHandler(repo, pub, sweeper, nil, "crc")
}

// serve runs handler on a test context and flushes the status to the recorder
func serve(t *testing.T, handler gin.HandlerFunc, method, target string, body interface{}, params ...gin.Param) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params

	handler(c)
	c.Writer.WriteHeaderNow()

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

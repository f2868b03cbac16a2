package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/publisher"
	"github.com/shreyas/tweetsched/scheduler/post"
	"github.com/shreyas/tweetsched/scheduler/repository"
	"golang.org/x/time/rate"
)

// ErrSweepInProgress is returned when a sweep is asked for while this worker is already sweeping
var ErrSweepInProgress = errors.New("a sweep is already running")

const attemptEventTimeout = 2 * time.Second

// SweepConfig holds the tunables of a SweepWorker
type SweepConfig struct {
	Account   string
	Lookback  time.Duration
	Lookahead time.Duration
	// PublishInterval is the minimum gap between two publishes; <= 0 disables throttling
	PublishInterval time.Duration
}

// SweepWorker finds posts due inside the window, publishes them one by one
// and marks each success as posted
type SweepWorker struct {
	repo      repository.PostsRepositoryInterface
	publisher publisher.Publisher
	// attempts is optional; nil disables attempt events
	attempts repository.AttemptEventsRepositoryInterface

	account   string
	lookback  time.Duration
	lookahead time.Duration
	limiter   *rate.Limiter

	now     func() time.Time
	running sync.Mutex
}

// NewSweepWorker creates a new SweepWorker; zero window durations fall back to the defaults
func NewSweepWorker(repo repository.PostsRepositoryInterface, pub publisher.Publisher, attempts repository.AttemptEventsRepositoryInterface, cfg SweepConfig) *SweepWorker {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}

	limit := rate.Inf
	if cfg.PublishInterval > 0 {
		limit = rate.Every(cfg.PublishInterval)
	}

	return &SweepWorker{
		repo:      repo,
		publisher: pub,
		attempts:  attempts,
		account:   cfg.Account,
		lookback:  cfg.Lookback,
		lookahead: cfg.Lookahead,
		limiter:   rate.NewLimiter(limit, 1),
		now:       time.Now,
	}
}

// Sweep runs one pass over the due window
func (w *SweepWorker) Sweep(ctx context.Context) (SweepReport, error) {
	if !w.running.TryLock() {
		logger.Warn("sweep skipped, previous sweep still running", "account", w.account)
		return SweepReport{}, ErrSweepInProgress
	}
	defer w.running.Unlock()

	window := DueWindow(w.now(), w.lookback, w.lookahead)
	report := SweepReport{Account: w.account, Window: window}

	logger.Info("sweep started", "account", w.account, "from", window.From, "to", window.To)

	due, err := w.repo.QueryDue(ctx, w.account, &window.From, &window.To)
	if err != nil {
		logger.Error("sweep aborted, could not read due posts", "account", w.account, "error", err)
		return report, fmt.Errorf("failed to query due posts: %w", err)
	}

	report.Found = len(due)
	logger.Info("due posts found", "account", w.account, "count", len(due))

	for _, p := range due {
		report.add(w.process(ctx, p))
	}

	if report.Failed > 0 {
		logger.Warn(report.Outcome(), "account", w.account, "found", report.Found, "posted", report.Posted, "failed", report.Failed, "skipped", report.Skipped)
	} else {
		logger.Info(report.Outcome(), "account", w.account, "found", report.Found, "posted", report.Posted, "skipped", report.Skipped)
	}

	return report, nil
}

// process publishes one post and marks it; it never stops the sweep
func (w *SweepWorker) process(ctx context.Context, p post.ScheduledPost) ItemResult {
	item := ItemResult{Account: p.Account, ScheduledTime: p.ScheduledTime}

	// the query already filters posted entries; this guards against stores that lag
	if p.IsPosted {
		logger.Debug("skipping post already marked posted", "account", p.Account, "scheduledTime", p.ScheduledTime)
		item.Skipped = true
		return item
	}

	if err := w.limiter.Wait(ctx); err != nil {
		item.Err = post.Classify(post.ErrPublish, fmt.Errorf("publish throttle: %w", err))
		logger.Error("post not published", "account", p.Account, "scheduledTime", p.ScheduledTime, "error", item.Err)
		return item
	}

	start := time.Now()
	result, err := w.publisher.Post(ctx, p.Text)
	elapsed := time.Since(start)

	if err != nil {
		item.Err = err
		logger.Error("failed to publish scheduled post", "account", p.Account, "scheduledTime", p.ScheduledTime, "error", err)
		w.recordAttempt(ctx, p, item, elapsed)
		return item
	}

	item.Published = true
	item.RemotePostID = result.ID

	if err := w.repo.MarkPosted(ctx, p.Account, p.ScheduledTime, result.ID); err != nil {
		// published but not marked: the next sweep will publish this post again
		item.Err = err
		logger.Error("post published but not marked as posted", "account", p.Account, "scheduledTime", p.ScheduledTime, "remotePostId", result.ID, "error", err)
	} else {
		logger.Info("scheduled post published", "account", p.Account, "scheduledTime", p.ScheduledTime, "remotePostId", result.ID)
	}

	w.recordAttempt(ctx, p, item, elapsed)
	return item
}

func (w *SweepWorker) recordAttempt(ctx context.Context, p post.ScheduledPost, item ItemResult, elapsed time.Duration) {
	if w.attempts == nil {
		return
	}

	event := repository.AttemptEvent{
		Account:         p.Account,
		ScheduledTime:   p.ScheduledTime,
		AttemptTime:     w.now().UnixMilli(),
		Success:         item.Err == nil,
		RemotePostID:    item.RemotePostID,
		TimeTakenMillis: elapsed.Milliseconds(),
	}
	if item.Err != nil {
		event.Error = item.Err.Error()
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), attemptEventTimeout)
	defer cancel()

	if err := w.attempts.SaveAttemptEvent(saveCtx, event); err != nil {
		logger.Error("failed to save attempt event", "account", p.Account, "scheduledTime", p.ScheduledTime, "error", err)
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/scheduler/post"
)

// PostsRepository gives scheduling semantics to a StoreClient. Every store call
// runs under its own timeout; failures come back classified with post error kinds.
type PostsRepository struct {
	store   StoreClient
	timeout time.Duration
	now     func() time.Time
}

// NewPostsRepository creates a new PostsRepository; timeout <= 0 disables per-call timeouts
func NewPostsRepository(store StoreClient, timeout time.Duration) *PostsRepository {
	return &PostsRepository{
		store:   store,
		timeout: timeout,
		now:     time.Now,
	}
}

func (r *PostsRepository) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Create validates the input, then writes an unposted entry
func (r *PostsRepository) Create(ctx context.Context, account string, scheduledTime int64, text string) (CreateResult, error) {
	p, err := post.NewScheduledPost(account, scheduledTime, text, r.now())
	if err != nil {
		logger.Warn("rejected scheduled post", "account", account, "scheduledTime", scheduledTime, "error", err)
		return CreateResult{}, err
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	previous, err := r.store.Put(callCtx, *p)
	if err != nil {
		err = post.Classify(post.ErrStoreUnavailable, err)
		logger.Error("failed to schedule post", "account", account, "scheduledTime", scheduledTime, "error", err)
		return CreateResult{}, err
	}

	if previous != nil {
		logger.Info("scheduled post replaced", "account", account, "scheduledTime", scheduledTime, "previousText", previous.Text)
	} else {
		logger.Info("new post scheduled", "account", account, "scheduledTime", scheduledTime)
	}

	return CreateResult{Post: *p, Previous: previous}, nil
}

// QueryDue validates the bounds before touching the store
func (r *PostsRepository) QueryDue(ctx context.Context, account string, from, to *int64) ([]post.ScheduledPost, error) {
	if account == "" {
		logger.Warn("rejected query without account")
		return nil, post.ErrMissingAccount
	}

	rng, err := post.NewQueryRange(from, to)
	if err != nil {
		logger.Warn("rejected inverted query range", "account", account, "from", *from, "to", *to)
		return nil, err
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	posts, err := r.store.Query(callCtx, account, rng)
	if err != nil {
		err = post.Classify(post.ErrStoreUnavailable, err)
		logger.Error("failed to query scheduled posts", "account", account, "range", rng.String(), "error", err)
		return nil, err
	}

	logger.Debug("queried scheduled posts", "account", account, "range", rng.String(), "count", len(posts))
	return posts, nil
}

// MarkPosted overwrites the posted fields, so a retry after success also succeeds
func (r *PostsRepository) MarkPosted(ctx context.Context, account string, scheduledTime int64, remotePostID string) error {
	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	if err := r.store.SetPosted(callCtx, account, scheduledTime, remotePostID); err != nil {
		err = post.Classify(post.ErrStoreUnavailable, err)
		logger.Error("failed to mark post as posted", "account", account, "scheduledTime", scheduledTime, "remotePostId", remotePostID, "error", err)
		return err
	}
	return nil
}

// Delete removes a pending post; posted entries are kept as history
func (r *PostsRepository) Delete(ctx context.Context, account string, scheduledTime int64) error {
	if account == "" {
		return post.ErrMissingAccount
	}

	if _, err := r.pending(ctx, account, scheduledTime); err != nil {
		return err
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	if err := r.store.Delete(callCtx, account, scheduledTime); err != nil {
		err = post.Classify(post.ErrStoreUnavailable, err)
		logger.Error("failed to delete scheduled post", "account", account, "scheduledTime", scheduledTime, "error", err)
		return err
	}

	logger.Info("scheduled post deleted", "account", account, "scheduledTime", scheduledTime)
	return nil
}

// Reschedule writes the new entry first and then removes the old one, so a failure
// in between leaves both rather than neither. A posted entry at newTime is never
// replaced; a pending one is, and comes back as Previous.
func (r *PostsRepository) Reschedule(ctx context.Context, account string, oldTime, newTime int64, text string) (CreateResult, error) {
	if err := post.Validate(account, newTime, text, r.now()); err != nil {
		logger.Warn("rejected reschedule", "account", account, "oldTime", oldTime, "newTime", newTime, "error", err)
		return CreateResult{}, err
	}

	old, err := r.pending(ctx, account, oldTime)
	if err != nil {
		return CreateResult{}, err
	}

	if newTime != oldTime {
		if _, err := r.pending(ctx, account, newTime); err != nil && !errors.Is(err, post.ErrNotFound) {
			return CreateResult{}, err
		}
	}

	result, err := r.Create(ctx, account, newTime, text)
	if err != nil {
		return CreateResult{}, err
	}

	if newTime == oldTime {
		return result, nil
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	if err := r.store.Delete(callCtx, account, oldTime); err != nil {
		err = post.Classify(post.ErrStoreUnavailable, err)
		logger.Error("rescheduled post written but old entry not removed", "account", account, "oldTime", oldTime, "newTime", newTime, "error", err)
		return CreateResult{}, err
	}

	logger.Info("scheduled post moved", "account", account, "oldTime", oldTime, "newTime", newTime)
	result.Moved = old
	return result, nil
}

// pending loads a post and refuses it when it has already been posted
func (r *PostsRepository) pending(ctx context.Context, account string, scheduledTime int64) (*post.ScheduledPost, error) {
	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	p, err := r.store.Get(callCtx, account, scheduledTime)
	if err != nil {
		err = post.Classify(post.ErrStoreUnavailable, err)
		if !errors.Is(err, post.ErrNotFound) {
			logger.Error("failed to load scheduled post", "account", account, "scheduledTime", scheduledTime, "error", err)
		}
		return nil, err
	}

	if p.IsPosted {
		logger.Warn("refusing to change a posted entry", "account", account, "scheduledTime", scheduledTime)
		return nil, post.ErrAlreadyPosted
	}
	return p, nil
}

// Ping checks if the store is reachable
func (r *PostsRepository) Ping(ctx context.Context) error {
	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	if err := r.store.Ping(callCtx); err != nil {
		return post.Classify(post.ErrStoreUnavailable, err)
	}
	return nil
}

package scheduler

import (
	"context"
	"strings"

	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/publisher"
	"github.com/shreyas/tweetsched/scheduler/post"
)

// PostNow publishes text immediately; nothing is stored
func PostNow(ctx context.Context, pub publisher.Publisher, text string) (publisher.Result, error) {
	if strings.TrimSpace(text) == "" {
		logger.Warn("rejected immediate post without text")
		return publisher.Result{}, post.ErrInvalidText
	}

	result, err := pub.Post(ctx, text)
	if err != nil {
		err = post.Classify(post.ErrPublish, err)
		logger.Error("immediate post failed", "error", err)
		return publisher.Result{}, err
	}

	logger.Info("immediate post published", "remotePostId", result.ID)
	return result, nil
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shreyas/tweetsched/lib/dynamo"
	"github.com/shreyas/tweetsched/lib/env"
	"github.com/shreyas/tweetsched/lib/logger"
	"github.com/shreyas/tweetsched/lib/postgres"
	redisClient "github.com/shreyas/tweetsched/lib/redis"
	"github.com/shreyas/tweetsched/publisher"
	"github.com/shreyas/tweetsched/scheduler"
	"github.com/shreyas/tweetsched/scheduler/repository"
)

var errMissingCredentials = errors.New("twitter credentials are incomplete: set TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_TOKEN_SECRET")

// app holds the collaborators built from the environment
type app struct {
	backend string
	store   repository.StoreClient
	posts   *repository.PostsRepository
	// attempts is only available with the redis backend
	attempts repository.AttemptEventsRepositoryInterface

	closers []func()
}

// newApp connects to the configured store backend
func newApp(ctx context.Context) (*app, error) {
	a := &app{backend: env.StoreBackend()}

	switch a.backend {
	case "redis":
		client, err := redisClient.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.store = repository.NewRedisStore(client)
		a.attempts = repository.NewAttemptEventsRepository(client)

	case "dynamodb":
		client, err := dynamo.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamodb client: %w", err)
		}
		a.store = repository.NewDynamoStore(client, env.DynamoTable())

	case "postgres":
		pool, err := postgres.New(ctx, env.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		store, err := repository.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to prepare postgres schema: %w", err)
		}
		a.store = store

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q: use redis, dynamodb or postgres", a.backend)
	}

	a.posts = repository.NewPostsRepository(a.store, env.StoreTimeout())
	logger.Info("store ready", "backend", a.backend)

	return a, nil
}

// Close releases every connection opened by newApp
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newPublisher builds the Twitter client from the environment
func newPublisher() (publisher.Publisher, error) {
	creds := env.LoadTwitterCredentials()
	if !creds.Complete() {
		return nil, errMissingCredentials
	}

	return publisher.NewTwitterClient(creds, publisher.TwitterOptions{
		BaseURL:  env.TwitterAPIBase(),
		Timeout:  env.PublishTimeout(),
		RetryMax: env.PublishRetryMax(),
	}), nil
}

// newSweepWorker wires a worker for the given account
func (a *app) newSweepWorker(pub publisher.Publisher, account string) *scheduler.SweepWorker {
	return scheduler.NewSweepWorker(a.posts, pub, a.attempts, scheduler.SweepConfig{
		Account:         account,
		Lookback:        env.SweepLookback(),
		Lookahead:       env.SweepLookahead(),
		PublishInterval: env.PublishInterval(),
	})
}

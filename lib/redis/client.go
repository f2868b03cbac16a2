package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shreyas/tweetsched/lib/env"
)

// New builds a pooled Redis client from environment and verifies the connection
func New(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", env.RedisHost(), env.RedisPort()),
		Password:     env.RedisPassword(),
		DB:           env.RedisDB(),
		PoolSize:     env.RedisPoolSize(),
		MinIdleConns: 2,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

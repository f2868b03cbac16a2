package env

import (
	"os"
	"strconv"
	"time"
)

// RedisHost returns the Redis host from environment
func RedisHost() string {
	if host := os.Getenv("REDIS_HOST"); host != "" {
		return host
	}
	return "localhost"
}

// RedisPort returns the Redis port from environment
func RedisPort() string {
	if port := os.Getenv("REDIS_PORT"); port != "" {
		return port
	}
	return "6379"
}

// RedisPassword returns the Redis password from environment
func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

// RedisDB returns the Redis database number from environment
func RedisDB() int {
	return intOr("REDIS_DB", 0)
}

// RedisPoolSize returns the Redis connection pool size from environment
func RedisPoolSize() int {
	return intOr("REDIS_POOL_SIZE", 10)
}

// HTTPPort returns the HTTP server port from environment
func HTTPPort() string {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		return port
	}
	return "80"
}

// LogLevel returns the zap level name from environment
func LogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// StoreBackend returns which store holds scheduled posts: redis, dynamodb or postgres
func StoreBackend() string {
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		return backend
	}
	return "redis"
}

// DynamoTable returns the DynamoDB table holding scheduled posts
func DynamoTable() string {
	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		return table
	}
	return "scheduledTweets"
}

// DynamoEndpoint returns an endpoint override, used with DynamoDB Local
func DynamoEndpoint() string {
	return os.Getenv("DYNAMODB_ENDPOINT")
}

// AWSRegion returns the AWS region; empty lets the SDK resolve it
func AWSRegion() string {
	return os.Getenv("AWS_REGION")
}

// DatabaseURL returns the Postgres connection string
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// Account returns the publishing account scheduled posts are stored under
func Account() string {
	if account := os.Getenv("ACCOUNT"); account != "" {
		return account
	}
	return "crc"
}

// SweepSchedule returns the cron expression driving periodic sweeps
func SweepSchedule() string {
	if schedule := os.Getenv("SWEEP_SCHEDULE"); schedule != "" {
		return schedule
	}
	return "*/5 * * * *"
}

// SweepLookback returns how far behind now a sweep looks for due posts
func SweepLookback() time.Duration {
	return durationOr("SWEEP_LOOKBACK", 7*time.Minute)
}

// SweepLookahead returns how far ahead of now a sweep looks for due posts
func SweepLookahead() time.Duration {
	return durationOr("SWEEP_LOOKAHEAD", 1*time.Minute)
}

// StoreTimeout bounds every single store call
func StoreTimeout() time.Duration {
	return durationOr("STORE_TIMEOUT", 5*time.Second)
}

// PublishTimeout bounds every single publish call
func PublishTimeout() time.Duration {
	return durationOr("PUBLISH_TIMEOUT", 30*time.Second)
}

// PublishInterval is the minimum spacing between publishes within a sweep
func PublishInterval() time.Duration {
	return durationOr("PUBLISH_INTERVAL", 1*time.Second)
}

// PublishRetryMax is how many times a rate-limited publish is retried
func PublishRetryMax() int {
	return intOr("PUBLISH_RETRY_MAX", 2)
}

// TwitterAPIBase returns the base URL of the Twitter API
func TwitterAPIBase() string {
	if base := os.Getenv("TWITTER_API_BASE"); base != "" {
		return base
	}
	return "https://api.twitter.com"
}

// TwitterCredentials holds the four OAuth 1.0a secrets used by the publisher.
// It is loaded once at startup and never mutated.
type TwitterCredentials struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
}

// Complete reports whether all four secrets are set
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// LoadTwitterCredentials reads the publisher secrets from environment
func LoadTwitterCredentials() TwitterCredentials {
	return TwitterCredentials{
		APIKey:            os.Getenv("TWITTER_API_KEY"),
		APISecret:         os.Getenv("TWITTER_API_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
	}
}

func intOr(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil && value > 0 {
			return value
		}
	}
	return fallback
}

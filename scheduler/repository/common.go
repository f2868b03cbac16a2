package repository

import "fmt"

// redisKeyPrefix is the prefix for all tweetsched-related Redis keys
const redisKeyPrefix = "tweetsched:"

// attemptEventsKey is the redis key for the attempt-events redis stream
const attemptEventsKey = redisKeyPrefix + "attempt-events"

// attemptEventsMaxLen caps the attempt-events stream (approximate trimming)
const attemptEventsMaxLen = 10000

// buildPostKey constructs the key of the hash holding one scheduled post
func buildPostKey(account string, scheduledTime int64) string {
	return fmt.Sprintf("%spost:%s:%d", redisKeyPrefix, account, scheduledTime)
}

// buildScheduleKey constructs the key of the sorted set indexing an account's posts by time
func buildScheduleKey(account string) string {
	return fmt.Sprintf("%sschedule:%s", redisKeyPrefix, account)
}

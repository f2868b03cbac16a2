package repository

import (
	"fmt"
	"strconv"

	"github.com/shreyas/tweetsched/scheduler/post"
)

// postToRedisArgs flattens a post into HSET field/value pairs.
// remotePostId is only written once the post is posted.
func postToRedisArgs(p post.ScheduledPost) []interface{} {
	args := []interface{}{
		"account", p.Account,
		"scheduledTime", strconv.FormatInt(p.ScheduledTime, 10),
		"modifiedTime", strconv.FormatInt(p.ModifiedTime, 10),
		"text", p.Text,
		"isPosted", strconv.FormatBool(p.IsPosted),
	}
	if p.IsPosted && p.RemotePostID != "" {
		args = append(args, "remotePostId", p.RemotePostID)
	}
	return args
}

// postFromRedisHash reconstructs a post from its hash fields
func postFromRedisHash(hash map[string]string) (*post.ScheduledPost, error) {
	scheduledTime, err := strconv.ParseInt(hash["scheduledTime"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduledTime field: %w", err)
	}

	var modifiedTime int64
	if raw, ok := hash["modifiedTime"]; ok && raw != "" {
		modifiedTime, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid modifiedTime field: %w", err)
		}
	}

	isPosted := false
	if raw, ok := hash["isPosted"]; ok && raw != "" {
		isPosted, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid isPosted field: %w", err)
		}
	}

	return &post.ScheduledPost{
		Account:       hash["account"],
		ScheduledTime: scheduledTime,
		ModifiedTime:  modifiedTime,
		Text:          hash["text"],
		IsPosted:      isPosted,
		RemotePostID:  hash["remotePostId"],
	}, nil
}

// pairsToHash converts a flat HGETALL reply returned from a Lua script into a map
func pairsToHash(reply interface{}) (map[string]string, error) {
	items, ok := reply.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result type from Lua script: %T", reply)
	}
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("odd number of hash elements: %d", len(items))
	}

	hash := make(map[string]string, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		field, ok := items[i].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected hash field type: %T", items[i])
		}
		value, ok := items[i+1].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected hash value type: %T", items[i+1])
		}
		hash[field] = value
	}
	return hash, nil
}

package repository

import (
	"testing"

	"github.com/shreyas/tweetsched/scheduler/post"
)

func Test_postToRedisArgs(t *testing.T) {
	tests := []struct {
		name       string
		p          post.ScheduledPost
		wantFields map[string]string
		absent     []string
	}{
		{
			name: "unposted omits remote id",
			p:    post.ScheduledPost{Account: "crc", ScheduledTime: 10, ModifiedTime: 5, Text: "hi"},
			wantFields: map[string]string{
				"account":       "crc",
				"scheduledTime": "10",
				"modifiedTime":  "5",
				"text":          "hi",
				"isPosted":      "false",
			},
			absent: []string{"remotePostId"},
		},
		{
			name: "posted carries remote id",
			p:    post.ScheduledPost{Account: "crc", ScheduledTime: 10, Text: "hi", IsPosted: true, RemotePostID: "r1"},
			wantFields: map[string]string{
				"isPosted":     "true",
				"remotePostId": "r1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := postToRedisArgs(tt.p)
			if len(args)%2 != 0 {
				t.Fatalf("postToRedisArgs() returned odd number of args: %d", len(args))
			}

			fields := make(map[string]string)
			for i := 0; i < len(args); i += 2 {
				fields[args[i].(string)] = args[i+1].(string)
			}

			for k, want := range tt.wantFields {
				if fields[k] != want {
					t.Errorf("field %s = %v, want %v", k, fields[k], want)
				}
			}
			for _, k := range tt.absent {
				if _, exists := fields[k]; exists {
					t.Errorf("field %s should be absent", k)
				}
			}
		})
	}
}

func Test_postFromRedisHash(t *testing.T) {
	p, err := postFromRedisHash(map[string]string{
		"account":       "crc",
		"scheduledTime": "1704110400000",
		"modifiedTime":  "1704100000000",
		"text":          "hello",
		"isPosted":      "true",
		"remotePostId":  "123",
	})
	if err != nil {
		t.Fatalf("postFromRedisHash() error = %v", err)
	}

	want := post.ScheduledPost{
		Account:       "crc",
		ScheduledTime: 1704110400000,
		ModifiedTime:  1704100000000,
		Text:          "hello",
		IsPosted:      true,
		RemotePostID:  "123",
	}
	if *p != want {
		t.Errorf("postFromRedisHash() = %+v, want %+v", *p, want)
	}
}

func Test_postFromRedisHash_invalid(t *testing.T) {
	tests := []struct {
		name string
		hash map[string]string
	}{
		{name: "missing scheduledTime", hash: map[string]string{"account": "crc"}},
		{name: "bad modifiedTime", hash: map[string]string{"scheduledTime": "1", "modifiedTime": "x"}},
		{name: "bad isPosted", hash: map[string]string{"scheduledTime": "1", "isPosted": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := postFromRedisHash(tt.hash); err == nil {
				t.Errorf("postFromRedisHash() error = nil, want error")
			}
		})
	}
}

func Test_pairsToHash(t *testing.T) {
	hash, err := pairsToHash([]interface{}{"a", "1", "b", "2"})
	if err != nil {
		t.Fatalf("pairsToHash() error = %v", err)
	}
	if hash["a"] != "1" || hash["b"] != "2" {
		t.Errorf("pairsToHash() = %v", hash)
	}

	if _, err := pairsToHash([]interface{}{"a"}); err == nil {
		t.Errorf("pairsToHash() with odd elements error = nil")
	}
	if _, err := pairsToHash("nope"); err == nil {
		t.Errorf("pairsToHash() with wrong type error = nil")
	}
}

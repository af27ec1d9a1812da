package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// replayEntry is the Redis value behind an idempotency key. A pending entry
// holds the key while the handler runs; a done entry carries the response.
type replayEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func pendingEntry(s requestStamp, sum string) replayEntry {
	return replayEntry{
		InProgress:  true,
		BodySHA256:  sum,
		RequestID:   s.ID,
		RequestAtMS: s.At.UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
}

func (e replayEntry) done(code int, body []byte) replayEntry {
	e.InProgress = false
	e.Code = code
	e.Body = body
	e.CreatedAt = time.Now().UTC()
	return e
}

func (e replayEntry) replayable() bool { return !e.InProgress && e.Code != 0 }

// entryStore keeps replay entries as JSON strings. Pending entries expire
// after provisionalLockTTL, done entries after ttl.
type entryStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// claim stores e only if key is free.
func (s entryStore) claim(ctx context.Context, key string, e replayEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

// load returns redis.Nil when the key is absent.
func (s entryStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(raw, &e)
	return e, err
}

func (s entryStore) finish(ctx context.Context, key string, e replayEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s entryStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var errNoEntry = errors.New("idempotency entry not found")

// entry is what Redis holds per key: a provisional marker while the handler
// runs, then the final response.
type entry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e entry) replayable() bool { return !e.InProgress && e.Code != 0 }

type store struct {
	rdb     redis.Cmdable
	lockTTL time.Duration
}

// reserve claims key for one in-flight request. false means someone already holds it.
func (s store) reserve(ctx context.Context, key string, e entry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.lockTTL).Result()
}

func (s store) load(ctx context.Context, key string) (entry, error) {
	var e entry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, errNoEntry
	}
	if err != nil {
		return e, err
	}
	return e, json.Unmarshal(v, &e)
}

// finish replaces the provisional marker with the final response for ttl.
func (s store) finish(ctx context.Context, key string, e entry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

// release drops the marker so the client may retry the same request id.
func (s store) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

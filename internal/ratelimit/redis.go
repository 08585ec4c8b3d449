package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis key prefix for rate limit windows
const keyPrefix = "ratelimit:"

// allowScript trims the sorted set to the window, then adds a hit when under
// limit. Scores are unix milliseconds. Returns {allowed, count, oldestScore}.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2])}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisStore shares windows between instances through Redis sorted sets.
type RedisStore struct {
	client redis.Scripter
	now    func() time.Time
}

// NewRedisStore constructs a Redis-backed Store.
func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.now().UnixMilli()
	windowMs := window.Milliseconds()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	vals, err := allowScript.Run(ctx, s.client, []string{keyPrefix + key}, now, windowMs, limit, member).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis allow: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("ratelimit: unexpected script reply %v", vals)
	}

	res := Result{Allowed: vals[0] == 1, Count: int(vals[1])}
	if !res.Allowed {
		res.RetryAfter = time.Duration(vals[2]+windowMs-now) * time.Millisecond
	}
	return res, nil
}

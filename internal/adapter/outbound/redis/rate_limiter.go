package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/fastorder/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// slidingWindow trims expired hits, then admits the new one if the bucket
// has room. Scores are unix milliseconds.
//
// KEYS[1] bucket; ARGV now, window, limit, member.
// Returns {allowed, remaining, retry_after_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	return {1, limit - count - 1, 0}
end

local retry = window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`)

// rateLimiter implements outbound.RateLimiterPort with a sorted-set log.
type rateLimiter struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter adapter.
func NewRateLimiter(client redis.UniversalClient) outbound.RateLimiterPort {
	return &rateLimiter{client: client, now: time.Now}
}

func (r *rateLimiter) Take(ctx context.Context, key string, limit int, window time.Duration) (*outbound.RateDecision, error) {
	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}

	res, err := slidingWindow.Run(ctx, r.client, []string{rateLimitKeyPrefix + key},
		r.now().UnixMilli(), windowMs, limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit %s: unexpected reply %v", key, res)
	}

	return &outbound.RateDecision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// Compile-time check
var _ outbound.RateLimiterPort = (*rateLimiter)(nil)

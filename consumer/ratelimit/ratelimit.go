package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter interface {
	ShouldWait(ctx context.Context, key string) (time.Duration, error)
}

type noRateLimiter struct{}

func (r *noRateLimiter) ShouldWait(_ context.Context, _ string) (time.Duration, error) {
	return 0, nil
}

// admitScript drops calls older than the window, then records the current
// call only if the window still has room. It returns -1 when the call is
// admitted, or the score of the oldest call in the window otherwise.
var admitScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '0', ARGV[1])
if redis.call('ZCARD', KEYS[1]) < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[2])
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
	return -1
end
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
return tonumber(oldest[2])
`)

// rateLimiter allows limit calls per key in any sliding window of the given
// duration. Admitted calls are recorded in a Redis sorted set scored by time;
// rejected calls are not, so a client retrying while limited does not
// extend its own wait.
type rateLimiter struct {
	redisClient *redis.Client
	duration    time.Duration
	limit       int
}

// NewRateLimiter returns a limiter that never waits when duration or limit
// is not positive.
func NewRateLimiter(redisClient *redis.Client, duration time.Duration, limit int) RateLimiter {
	if redisClient == nil || duration <= 0 || limit <= 0 {
		return &noRateLimiter{}
	}
	return &rateLimiter{
		redisClient: redisClient,
		duration:    duration,
		limit:       limit,
	}
}

func (r *rateLimiter) ShouldWait(ctx context.Context, key string) (time.Duration, error) {
	now := time.Now()
	start := now.Add(-r.duration)

	oldest, err := admitScript.Run(ctx, r.redisClient, []string{key},
		start.UnixMicro(),
		now.UnixMicro(),
		r.limit,
		r.duration.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to update rate window for %s: %s", key, err)
	}
	return waitFor(oldest, now, r.duration), nil
}

// waitFor returns how long until the call recorded at oldest (unix
// microseconds) leaves the window. A negative oldest means the call was
// admitted.
func waitFor(oldest int64, now time.Time, duration time.Duration) time.Duration {
	if oldest < 0 {
		return 0
	}
	wait := time.UnixMicro(oldest).Add(duration).Sub(now)
	if wait <= 0 {
		return time.Microsecond
	}
	return wait
}

package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts hits per key in Redis:
// INCR key; on the first hit PEXPIRE key window.
// The caller's key already carries route, identity and window bucket.
type FixedWindowLimiter struct {
	rdb *goredis.Client
	now func() time.Time
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	l := &FixedWindowLimiter{now: time.Now}
	if c != nil {
		l.rdb = c.rdb
	}
	return l
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 0 if allowed
	ResetAt    time.Time     // window end (best-effort)
	Count      int
}

// returns {count, ttl_ms}
var fixedWindowScript = goredis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`)

// AllowFixedWindow returns whether a request is allowed for key in the current window.
// A disabled limiter (no Redis) allows everything.
func (l *FixedWindowLimiter) AllowFixedWindow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	if window < time.Millisecond {
		window = time.Minute
	}
	if l.rdb == nil {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}

	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit redis eval: %w", err)
	}

	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return Decision{}, fmt.Errorf("ratelimit redis eval: unexpected result %T", res)
	}
	count, ok1 := arr[0].(int64)
	ttlms, ok2 := arr[1].(int64)
	if !ok1 || !ok2 {
		return Decision{}, fmt.Errorf("ratelimit redis eval: unexpected element types")
	}

	ttl := time.Duration(ttlms) * time.Millisecond
	d := Decision{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
		Count:     int(count),
		ResetAt:   l.now().Add(ttl),
	}
	if !d.Allowed {
		if ttl > 0 {
			d.RetryAfter = ttl
		} else {
			d.RetryAfter = window
		}
	}
	return d, nil
}

// Enabled reports whether the limiter is backed by Redis.
func (l *FixedWindowLimiter) Enabled() bool {
	return l != nil && l.rdb != nil
}

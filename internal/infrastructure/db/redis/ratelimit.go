package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fixed-window counter. INCR and PEXPIRE run in one script so a crash
// between the two cannot leave a counter without an expiry.
var loginWindowScript = redis.NewScript(`
	local n = redis.call('INCR', KEYS[1])
	if n == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return { n, ttl }
`)

// LoginLimiter counts login attempts per client in fixed windows.
// Key format: ratelimit:login:<client key>
type LoginLimiter struct {
	client *redis.Client
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{client: client}
}

// Hit records one attempt and returns the attempt count in the current
// window plus the time remaining until the window resets.
func (l *LoginLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	vals, err := loginWindowScript.Run(ctx, l.client, []string{l.key(key)}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit hit: %w", err)
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("rate limit hit: unexpected script reply %v", vals)
	}

	reset := time.Duration(vals[1]) * time.Millisecond
	if reset < 0 {
		reset = 0
	}
	return vals[0], reset, nil
}

func (l *LoginLimiter) key(key string) string {
	return "ratelimit:login:" + key
}

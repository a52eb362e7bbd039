package redis

import (
	"context"
	"fmt"
	"time"
)

// releaseIfOwnerScript deletes the key only while it still holds the
// caller's token, so a worker whose lease expired cannot drop its
// successor's lock.
const releaseIfOwnerScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// FixedWindowAllow counts one request against scope in the current window
// and reports whether it is still within limit.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.cmd == nil {
		return false, 0, errNotInitialized
	}
	if window <= 0 {
		return false, 0, fmt.Errorf("rate limit window must be positive, got %s", window)
	}
	key := c.RateLimitKey(scope, c.clock().Truncate(window))
	count, err := c.cmd.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 {
		if err := c.cmd.Expire(ctx, key, window).Err(); err != nil {
			return true, count, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count <= limit, count, nil
}

// ReleaseIfOwner drops key when it still carries token. It reports whether
// the key was deleted.
func (c *Client) ReleaseIfOwner(ctx context.Context, key, token string) (bool, error) {
	if c.cmd == nil {
		return false, errNotInitialized
	}
	deleted, err := c.cmd.Eval(ctx, releaseIfOwnerScript, []string{key}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("release %s: %w", key, err)
	}
	return deleted == 1, nil
}

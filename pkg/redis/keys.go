package redis

import (
	"strconv"
	"strings"
	"time"
)

const keyNamespace = "at"

// Key families. Every key the backend writes starts with at:<family>.
const (
	familyIdempotency = "idempotency"
	familyRateLimit   = "rate_limit"
	familyJobLock     = "lock"
)

// IdempotencyKey scopes a client key to the caller and route that sent it,
// so two users reusing the same header value never share a replay.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(familyIdempotency, scope, id)
}

// RateLimitKey names the counter for one fixed window. The window start is
// part of the key so a counter that missed its TTL still stops counting
// once the window rolls over.
func (c *Client) RateLimitKey(scope string, windowStart time.Time) string {
	return buildKey(familyRateLimit, scope, strconv.FormatInt(windowStart.Unix(), 10))
}

// JobLockKey names the lease the cron worker holds while it runs a cycle.
func (c *Client) JobLockKey(job string) string {
	return buildKey(familyJobLock, job)
}

func buildKey(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}

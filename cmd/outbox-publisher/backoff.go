package main

import (
	"math/rand/v2"
	"time"
)

const jitterWindow = 250 * time.Millisecond

// pollBackoff doubles the wait after each failed batch, capped at max, and
// drops back to base once a batch succeeds.
type pollBackoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
	jitter  func() time.Duration
}

func newPollBackoff(base, max time.Duration) *pollBackoff {
	return &pollBackoff{
		base:    base,
		max:     max,
		current: base,
		jitter:  func() time.Duration { return rand.N(jitterWindow) },
	}
}

func (b *pollBackoff) fail() time.Duration {
	next := b.current * 2
	if next <= 0 || next > b.max {
		next = b.max
	}
	b.current = next
	return next + b.jitter()
}

func (b *pollBackoff) reset() time.Duration {
	b.current = b.base
	return b.base + b.jitter()
}

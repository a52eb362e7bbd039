package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type countingLimiter struct {
	counts map[string]int64
}

func (c *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	c.counts[scope]++
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func TestWriteRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int64{}}
	handler := WriteRateLimit(limiter, 2, time.Minute, nil)(okHandler())
	userID := uuid.New()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/assets", nil), userID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int64(3), limiter.counts["writes:user:"+userID.String()])
}

func TestWriteRateLimitIgnoresReads(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int64{}}
	handler := WriteRateLimit(limiter, 1, time.Minute, nil)(okHandler())
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Empty(t, limiter.counts)
}

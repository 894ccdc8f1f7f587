package limiter

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter paces calls into external capabilities, one limiter per
// capability name.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
	mu       sync.RWMutex
}

// NewRateLimiter creates a rate limiter allowing rps requests per second per
// capability with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// GetLimiter returns or creates the limiter for a capability
func (rl *RateLimiter) GetLimiter(capability string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[capability]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rl.rps), rl.burst)
	rl.limiters[capability] = limiter
	return limiter
}

// Wait blocks until the capability's limiter allows the call
func (rl *RateLimiter) Wait(ctx context.Context, capability string) error {
	if err := rl.GetLimiter(capability).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return nil
}

package resilience

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// Guard pairs a client-side rate limiter with a circuit breaker. Remote
// clients run every call through one Guard per dependency.
type Guard struct {
	limiter *rate.Limiter
	breaker *Breaker
}

// NewGuard creates a guard. rps <= 0 disables rate limiting.
func NewGuard(breaker *Breaker, rps float64) *Guard {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Guard{limiter: limiter, breaker: breaker}
}

// Do waits for a rate limiter token, then runs fn through the breaker.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Fail fast instead of queueing behind an open breaker
	if g.breaker.State() == StateOpen {
		return ErrCircuitOpen
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return waitError(ctx, err)
	}
	return g.breaker.Do(ctx, fn)
}

// Breaker exposes the guarded breaker for health reporting.
func (g *Guard) Breaker() *Breaker {
	return g.breaker
}

// waitError reports a token the deadline cannot cover as DeadlineExceeded
func waitError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("rate limit wait: %w: %v", context.DeadlineExceeded, err)
	}
	return fmt.Errorf("rate limit wait: %w", err)
}

/*
Package resilience protects calls to remote dependencies (the blueprint
generation service and the remote blueprint store).

A Breaker is a three-state circuit breaker; a Guard adds client-side rate
limiting in front of it.

# Usage

	breaker := resilience.NewBreaker("generation", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	guard := resilience.NewGuard(breaker, cfg.Generation.RPS)

	err := guard.Do(ctx, func(ctx context.Context) error {
		return call(ctx)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience

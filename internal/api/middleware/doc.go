// Package middleware provides the HTTP middleware of the blueprint store
// service.
//
// Middleware stack:
//   - RequestID: X-Request-ID correlation (UUID)
//   - Logger / Recovery: structured request logging and panic recovery (zap)
//   - CORS: cross-origin access for the web front end
//   - RateLimit: per-IP token bucket with idle eviction
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware

// Package generation talks to the external blueprint generation service.
//
// Client posts {"idea": "..."} to /api/v1/generate_blueprint with resty and
// parses the reply into an unsaved blueprint. Calls make a single attempt
// and are never retried. A circuit breaker and a client-side rate limiter
// guard the service.
//
// Fake is a controllable Generator for tests and offline use.
package generation

// Package store implements the remote blueprint store contract.
//
// Implementations:
//   - HTTPStore: client for the store service (retryablehttp; idempotent
//     requests are retried, creates are not)
//   - MemoryStore: in-process, used by tests and the default server backend
//   - SQLiteStore: durable backend for cmd/server
//
// Instrument wraps any Store with Prometheus metrics and zap logging.
package store

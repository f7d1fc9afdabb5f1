// Package config provides 12-factor configuration management for AutoThinker.
//
// Configuration is loaded from an optional .env file and environment
// variables with sensible defaults. CLI flags can override both.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Store: storage backend for the service, remote store URL for clients
//   - Generation: blueprint generation service endpoint and limits
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: origins allowed to reach the store service
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST
//   - STORE_BACKEND, STORE_PATH, STORE_URL, STORE_TIMEOUT, STORE_RETRIES
//   - GENERATION_URL, GENERATION_TIMEOUT, GENERATION_RPS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS (comma separated)
//   - AUTOTHINKER_ENV_FILE (defaults to .env)
package config

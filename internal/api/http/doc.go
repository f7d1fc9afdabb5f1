// Package http provides the HTTP handlers of the blueprint store service.
//
// Endpoints:
//   - Health: / and /health
//   - Blueprints: GET/POST /blueprints, GET/PUT/DELETE /blueprints/:id
//   - Metrics: /metrics (Prometheus) and /metrics/json
//
// Errors are returned as {"error": "..."}: 400 for invalid ids and bodies,
// 404 for unknown ids on read and update. Deleting an unknown id is 204.
//
// Example Usage:
//
//	handlers := http.NewHandlers(st, metrics, logger)
//	handlers.Register(router)
package http

/*
Package monitoring provides Prometheus metrics for the blueprint store
service and the remote clients.

# Metrics

- HTTP request metrics (latency, throughput, size) per route template
- Store operation counts and latency per backend
- Stored blueprint gauge
- Generation call outcomes and latency
- Circuit breaker state per remote dependency

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "sqlite", "list")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring

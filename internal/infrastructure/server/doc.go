// Package server assembles the blueprint store service.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Open the storage backend (memory or sqlite)
//  3. Setup middleware: request id, recovery, logging, metrics, CORS,
//     rate limiting
//  4. Register the blueprint routes
//  5. Serve until the context is cancelled, then drain
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

// Package main is the entry point for the AutoThinker blueprint store
// service.
//
// The service persists generated startup blueprints and serves them to the
// web front end and the autothinker CLI:
//
//	Frontend / autothinker CLI → store service → memory | SQLite
//
// Configuration:
//   - Environment variables and an optional .env file
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# In-memory store on :8000
//	./server
//
//	# Persistent store
//	./server -backend sqlite -db ./data/blueprints.db
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

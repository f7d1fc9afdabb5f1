// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// Components accept a *zap.Logger and fall back to a no-op logger via OrNop
// when none is given.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Store service starting", zap.String("port", "8000"))
//	logger.Error("Failed to list blueprints", zap.Error(err))
package logging

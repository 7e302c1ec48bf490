// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance for batch commands (console output) and for the
// HTTP server (json output for log shippers).
//
// # Context Awareness
//
// WithRegion scopes a logger to one registry region so that every line emitted while
// processing it can be filtered. WithRayID extracts the RayID from a Fiber context for
// request correlation in the serve command.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	rl := logger.WithRegion(log, "77")
//	rl.Info("Region loaded", zap.Int("houses", n))
package logger

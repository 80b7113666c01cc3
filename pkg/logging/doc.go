// Package logging provides structured logging utilities for mavmon components.
//
// # Overview
//
// This package wraps the standard library slog package with project-wide
// defaults and conventions for consistent logging across all components. It
// supports environment-based log level configuration, module/version context
// injection, automatic source location tracking for debug logs, and optional
// rotated file output for long-running daemons.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("mavmond", version)
//
//	    slog.Info("telemetry received", "voltage", 24.1)
//	    slog.Error("publish failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("mavsim", "v1.0.0", "debug")
//	logger.Info("simulator starting", "rate_hz", 10)
//
// Teeing logs to a rotated file in addition to stderr:
//
//	sink := io.MultiWriter(os.Stderr, logging.RotatingFileSink("/var/log/mavmond.log"))
//	slog.SetDefault(logging.NewStructuredLoggerTo(sink, "mavmond", version, "info"))
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug mavmond
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written in JSON format:
//
//	{
//	    "time": "2026-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "monitor started",
//	    "module": "mavmond",
//	    "version": "v1.0.0",
//	    "listen": "127.0.0.1:14550"
//	}
//
// Debug logs additionally include a "source" object with function, file,
// and line.
package logging

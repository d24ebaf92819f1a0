// Package logging provides structured logging for the extensions plugin.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same shape and default fields.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Per-mixin loggers via ForMixin (mixin_id, device)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("mixin attached", "mixin_id", id)
//	logger.Error("settings request failed", "error", err)
//
// Never log secrets, tokens or setting values that may contain them.
package logging

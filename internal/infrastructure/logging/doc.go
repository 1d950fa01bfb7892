// Package logging wraps log/slog with the service's conventions.
//
// Every record carries service and version fields. Output is JSON for
// production and text for development, selected by the logging section
// of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8090)
//	scanLog := logger.With("component", "scan")
//
// Never log secrets, tokens, or API keys. Device addresses are
// operational data in this system and may appear at debug level.
package logging

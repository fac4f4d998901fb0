// Package pkglog sets up the process-wide slog logger.
//
// Records are JSON with "ts" and "severity" keys, and carry the request
// correlation id whenever the context has one.
package pkglog

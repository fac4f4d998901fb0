// Package pkgtelemetry sets up OpenTelemetry metrics and the instruments
// recorded by the transaction ingestion flow.
package pkgtelemetry

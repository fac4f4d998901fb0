// Package pkggraph wraps the Neo4j Bolt driver behind a small write-only
// interface so callers can be tested without a running graph database.
package pkggraph

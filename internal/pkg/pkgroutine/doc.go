// Package pkgroutine runs named background tasks under a shared concurrency
// limit and reports their failures, panics included, from Wait.
package pkgroutine

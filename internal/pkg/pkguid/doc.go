// Package pkguid hands out identifiers: UUIDv7 strings for events and
// correlation ids, Snowflake numbers for transaction ids.
package pkguid

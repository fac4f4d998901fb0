// Package pkgerror carries the error taxonomy the HTTP edge maps to status
// codes: validation failures (400/422), business conflicts (409) and server
// side faults, storage failures (503) among them.
package pkgerror

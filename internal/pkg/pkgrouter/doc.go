// Package pkgrouter is the HTTP front of the service: httprouter underneath,
// a {message, data, meta} JSON envelope on top, and the recover, correlation
// id and request logging middleware every route shares.
package pkgrouter

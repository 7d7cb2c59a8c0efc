// Package session owns the client side of one injection connection.
//
// Ownership boundary:
// - bootstrap handshake and property type registry lifecycle
// - get/set command transmission and the raw receive primitive
// - connection establishment helpers (dial retry/backoff, I/O deadlines)
package session

// Package oauth provides the protocol-level building blocks for the
// authorization-code-with-PKCE flow: PKCE verifier/challenge generation,
// nonce and state values, query-string assembly for the authorization and
// token endpoints, redirect fragment parsing, and the token record produced
// by a successful exchange.
//
// The package is deliberately free of I/O. Everything stateful (durable
// storage, the session state machine, HTTP calls) lives in internal
// packages that build on these primitives.
package oauth

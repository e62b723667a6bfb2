package session

import (
	"errors"
)

// Error categories of the session core, per the propagation policy: no
// operation silently succeeds on a failed sub-step, and every rejection
// carries enough context to tell the categories apart.
var (
	// ErrNoCachedToken is a precondition violation: the operation needs a
	// token that was never acquired for the account. Raised before any
	// network call.
	ErrNoCachedToken = errors.New("no token cached for account")

	// ErrNoAccount means the current account could not be restored from
	// durable storage.
	ErrNoAccount = errors.New("no account could be found")

	// ErrUnknownAccount means an email that is not in the roster.
	ErrUnknownAccount = errors.New("account not in roster")

	// ErrNoPendingFlow means a code exchange was attempted without a
	// persisted pending operation (or its code/verifier).
	ErrNoPendingFlow = errors.New("no pending authorization flow")

	// ErrStateMismatch is a protocol violation: the state echoed in the
	// redirect does not match the one issued with the request.
	ErrStateMismatch = errors.New("authorization state mismatch")

	// ErrAuthorizationFailed carries an error response from the
	// authorization server (user denied, server error).
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrTransport covers token-endpoint request failures and non-OK
	// statuses.
	ErrTransport = errors.New("token endpoint transport error")

	// ErrDecode covers token-endpoint bodies that are not valid JSON or
	// are missing the required refresh_token.
	ErrDecode = errors.New("token endpoint decode error")
)

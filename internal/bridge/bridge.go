// Package bridge turns an arriving authorization redirect into an internal
// event for the session core. Detection (a URL fragment or query string
// carrying OAuth response keys) is decoupled from consumption: interested
// parties register a callback and the bridge dispatches to them, regardless
// of whether the response arrived via the loopback listener, a pasted URL
// or a test.
package bridge

import (
	"net/url"
	"strings"
	"sync"

	"gdconnect/pkg/logging"
	"gdconnect/pkg/oauth"
)

// AuthResponse is a parsed authorization response from a redirect.
type AuthResponse struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string

	// Raw holds every parameter of the response, including ones the typed
	// fields do not cover.
	Raw map[string]string
}

// IsError reports whether the authorization server returned an error
// instead of a code.
func (r *AuthResponse) IsError() bool {
	return r.Error != ""
}

func responseFromParams(params map[string]string) *AuthResponse {
	return &AuthResponse{
		Code:             params["code"],
		State:            params["state"],
		Error:            params["error"],
		ErrorDescription: params["error_description"],
		Raw:              params,
	}
}

// Handler consumes a dispatched authorization response.
type Handler func(*AuthResponse)

// Bridge routes authorization responses to registered handlers.
type Bridge struct {
	mu       sync.RWMutex
	handlers []Handler
}

// New creates an empty bridge.
func New() *Bridge {
	return &Bridge{}
}

// OnAuthResponse registers a handler invoked for every dispatched
// authorization response.
func (b *Bridge) OnAuthResponse(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Dispatch inspects raw (a full URL, a bare fragment, or a query string)
// and, iff it looks like an authorization response, parses it and invokes
// the registered handlers. Returns whether a response was dispatched.
func (b *Bridge) Dispatch(raw string) bool {
	params := extractResponseParams(raw)
	if params == nil {
		return false
	}

	resp := responseFromParams(params)
	logging.Debug("Bridge", "dispatching authorization response (error=%q)", resp.Error)
	b.dispatch(resp)
	return true
}

func (b *Bridge) dispatch(resp *AuthResponse) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(resp)
	}
}

// extractResponseParams pulls recognized OAuth response parameters out of
// raw. The fragment is preferred (response_mode=fragment is what the client
// requests); a query string is accepted as a fallback since some servers
// deliver errors that way.
func extractResponseParams(raw string) map[string]string {
	if idx := strings.Index(raw, "#"); idx >= 0 {
		if params := oauth.ParseRedirectFragment(raw[idx:]); params != nil {
			return params
		}
	}
	if strings.HasPrefix(raw, "#") {
		return oauth.ParseRedirectFragment(raw)
	}

	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		// A query string has the same k=v&k=v shape as a fragment.
		if params := oauth.ParseRedirectFragment("#" + u.RawQuery); params != nil {
			return params
		}
	}
	return nil
}

package bridge

import (
	"testing"
)

func TestDispatch_FragmentResponse(t *testing.T) {
	b := New()

	var got *AuthResponse
	b.OnAuthResponse(func(r *AuthResponse) { got = r })

	dispatched := b.Dispatch("http://localhost:4200/#code=abc123&state=xyz")
	if !dispatched {
		t.Fatal("Dispatch() = false for an auth response URL")
	}
	if got == nil {
		t.Fatal("handler was not invoked")
	}
	if got.Code != "abc123" {
		t.Errorf("Code = %q, want %q", got.Code, "abc123")
	}
	if got.State != "xyz" {
		t.Errorf("State = %q, want %q", got.State, "xyz")
	}
	if got.IsError() {
		t.Error("IsError() = true for a code response")
	}
}

func TestDispatch_BareFragment(t *testing.T) {
	b := New()

	var got *AuthResponse
	b.OnAuthResponse(func(r *AuthResponse) { got = r })

	if !b.Dispatch("#code=abc123&state=xyz") {
		t.Fatal("Dispatch() = false for a bare fragment")
	}
	if got == nil || got.Code != "abc123" {
		t.Fatalf("handler got %+v, want code abc123", got)
	}
}

func TestDispatch_QueryFallback(t *testing.T) {
	b := New()

	var got *AuthResponse
	b.OnAuthResponse(func(r *AuthResponse) { got = r })

	if !b.Dispatch("http://localhost:4200/?error=access_denied&error_description=denied") {
		t.Fatal("Dispatch() = false for a query-mode error response")
	}
	if got == nil || !got.IsError() {
		t.Fatalf("handler got %+v, want an error response", got)
	}
	if got.Error != "access_denied" {
		t.Errorf("Error = %q, want access_denied", got.Error)
	}
}

func TestDispatch_OrdinaryPageLoad(t *testing.T) {
	b := New()

	invoked := false
	b.OnAuthResponse(func(*AuthResponse) { invoked = true })

	for _, raw := range []string{
		"http://localhost:4200/",
		"http://localhost:4200/#/settings",
		"http://localhost:4200/?theme=dark",
		"",
	} {
		if b.Dispatch(raw) {
			t.Errorf("Dispatch(%q) = true, want false", raw)
		}
	}
	if invoked {
		t.Error("handler invoked for a non-response URL")
	}
}

func TestDispatch_MultipleHandlers(t *testing.T) {
	b := New()

	count := 0
	b.OnAuthResponse(func(*AuthResponse) { count++ })
	b.OnAuthResponse(func(*AuthResponse) { count++ })

	b.Dispatch("#code=abc123")
	if count != 2 {
		t.Errorf("handler invocations = %d, want 2", count)
	}
}

package oauth

import (
	"testing"
)

func TestAppendQueryString(t *testing.T) {
	url := AppendQueryString("https://x/y", "a=1")
	if url != "https://x/y?a=1" {
		t.Errorf("first append = %q, want %q", url, "https://x/y?a=1")
	}

	url = AppendQueryString(url, "b=2")
	if url != "https://x/y?a=1&b=2" {
		t.Errorf("second append = %q, want %q", url, "https://x/y?a=1&b=2")
	}
}

func TestAppendQueryString_PreEncodedValue(t *testing.T) {
	// Callers pre-encode values; the pair must be appended verbatim.
	url := AppendQueryString("https://x/y", "redirect_uri=http%3A%2F%2Flocalhost%3A4200")
	want := "https://x/y?redirect_uri=http%3A%2F%2Flocalhost%3A4200"
	if url != want {
		t.Errorf("AppendQueryString() = %q, want %q", url, want)
	}
}

func TestAppendQueryString_EmptyPair(t *testing.T) {
	if got := AppendQueryString("https://x/y", ""); got != "https://x/y" {
		t.Errorf("empty pair changed URL: %q", got)
	}
}

func TestParseRedirectFragment(t *testing.T) {
	parsed := ParseRedirectFragment("#code=abc123&state=xyz")
	if parsed == nil {
		t.Fatal("ParseRedirectFragment() returned nil for an auth response fragment")
	}
	if parsed["code"] != "abc123" {
		t.Errorf("code = %q, want %q", parsed["code"], "abc123")
	}
	if parsed["state"] != "xyz" {
		t.Errorf("state = %q, want %q", parsed["state"], "xyz")
	}
}

func TestParseRedirectFragment_Error(t *testing.T) {
	parsed := ParseRedirectFragment("#error=access_denied&error_description=user%20cancelled")
	if parsed == nil {
		t.Fatal("ParseRedirectFragment() returned nil for an error fragment")
	}
	if parsed["error"] != "access_denied" {
		t.Errorf("error = %q, want %q", parsed["error"], "access_denied")
	}
	if parsed["error_description"] != "user cancelled" {
		t.Errorf("error_description = %q, want %q", parsed["error_description"], "user cancelled")
	}
}

func TestParseRedirectFragment_NotAnAuthResponse(t *testing.T) {
	cases := []string{
		"",
		"#",
		"#/home",
		"#section-2",
		"#foo=bar",
	}

	for _, hash := range cases {
		if parsed := ParseRedirectFragment(hash); parsed != nil {
			t.Errorf("ParseRedirectFragment(%q) = %v, want nil", hash, parsed)
		}
	}
}

func TestFragmentLooksLikeAuthResponse(t *testing.T) {
	if !FragmentLooksLikeAuthResponse("#code=abc123&state=xyz") {
		t.Error("fragment with code/state not recognized as auth response")
	}
	if FragmentLooksLikeAuthResponse("#/settings") {
		t.Error("ordinary route fragment recognized as auth response")
	}
}

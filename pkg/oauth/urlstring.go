package oauth

import (
	"net/url"
	"strings"
)

// responseKeys are the OAuth response parameters recognized in a redirect
// fragment. A fragment carrying at least one of these is treated as an
// authorization response rather than an ordinary page anchor.
var responseKeys = []string{
	"code",
	"state",
	"error",
	"error_description",
	"error_uri",
	"id_token",
	"access_token",
	"session_state",
}

// AppendQueryString appends a pre-encoded "key=value" pair to a URL,
// choosing '?' or '&' depending on whether the URL already carries a query
// string. Values are expected to be encoded by the caller; the pair is
// appended verbatim so already-encoded fragments are not encoded twice.
func AppendQueryString(rawURL, kvPair string) string {
	if kvPair == "" {
		return rawURL
	}
	if strings.Contains(rawURL, "?") {
		return rawURL + "&" + kvPair
	}
	return rawURL + "?" + kvPair
}

// ParseRedirectFragment parses a URL fragment returned by the authorization
// server into a map of its recognized OAuth response parameters. The leading
// '#' (or "#/") is stripped if present. Returns nil when the fragment does
// not contain any recognized key.
func ParseRedirectFragment(hash string) map[string]string {
	hash = strings.TrimPrefix(hash, "#")
	hash = strings.TrimPrefix(hash, "/")
	if hash == "" {
		return nil
	}

	parsed := make(map[string]string)
	for _, pair := range strings.Split(hash, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			continue
		}
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			decoded = value
		}
		parsed[key] = decoded
	}

	for _, key := range responseKeys {
		if _, ok := parsed[key]; ok {
			return parsed
		}
	}
	return nil
}

// FragmentLooksLikeAuthResponse reports whether a URL fragment contains at
// least one recognized OAuth response key. Used to tell an authorization
// redirect-back apart from an ordinary page load.
func FragmentLooksLikeAuthResponse(hash string) bool {
	return ParseRedirectFragment(hash) != nil
}

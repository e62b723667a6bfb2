package oauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeIDTokenClaims decodes the claims of an ID token without verifying
// its signature. The client treats tokens as opaque credentials issued and
// validated by the authorization server; decoding is only used to surface
// profile information (name, email, expiry) for display.
func DecodeIDTokenClaims(idToken string) (jwt.MapClaims, error) {
	if idToken == "" {
		return nil, fmt.Errorf("id token is empty")
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("malformed id token: %w", err)
	}

	return claims, nil
}

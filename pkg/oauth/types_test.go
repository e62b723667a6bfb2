package oauth

import (
	"testing"
)

func TestTokensFields_RoundTrip(t *testing.T) {
	tokens := &Tokens{
		IDToken:               "id-token-value",
		RefreshToken:          "refresh-token-value",
		RefreshTokenExpiresIn: "1209600",
		TokenType:             "Bearer",
	}

	fields := tokens.Fields()

	if _, ok := fields[KeyScope]; ok {
		t.Error("empty scope produced a storage key")
	}
	if fields[KeyRefreshToken] != "refresh-token-value" {
		t.Errorf("refresh_token field = %q", fields[KeyRefreshToken])
	}

	rebuilt := TokensFromFields(fields)
	if *rebuilt != *tokens {
		t.Errorf("round trip mismatch: got %+v, want %+v", rebuilt, tokens)
	}
}

func TestTokensToOAuth2Token(t *testing.T) {
	tokens := &Tokens{
		IDToken:      "id-token-value",
		RefreshToken: "refresh-token-value",
		TokenType:    "Bearer",
	}

	converted := tokens.ToOAuth2Token()
	if converted.AccessToken != "id-token-value" {
		t.Errorf("AccessToken = %q, want the id token", converted.AccessToken)
	}
	if converted.RefreshToken != "refresh-token-value" {
		t.Errorf("RefreshToken = %q", converted.RefreshToken)
	}
	if extra, _ := converted.Extra("id_token").(string); extra != "id-token-value" {
		t.Errorf("id_token extra = %q", extra)
	}
}

package oauth

import (
	"golang.org/x/oauth2"
)

// Tokens is the result of a token-endpoint exchange. Every field is stored
// verbatim as returned by the server; expiry values are opaque numeric
// strings that the client records but does not enforce.
type Tokens struct {
	IDToken               string `json:"id_token,omitempty"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn string `json:"refresh_token_expires_in,omitempty"`
	IDTokenExpiresIn      string `json:"id_token_expires_in,omitempty"`
	Scope                 string `json:"scope,omitempty"`
	TokenType             string `json:"token_type,omitempty"`
	ProfileInfo           string `json:"profile_info,omitempty"`
	NotBefore             string `json:"not_before,omitempty"`
}

// Storage key names for the individual token fields. These are the durable
// keys a token record is spread across between the code exchange and the
// post-logout restore.
const (
	KeyIDToken               = "id_token"
	KeyRefreshToken          = "refresh_token"
	KeyRefreshTokenExpiresIn = "refresh_token_expires_in"
	KeyIDTokenExpiresIn      = "id_token_expires_in"
	KeyScope                 = "scope"
	KeyTokenType             = "token_type"
	KeyProfileInfo           = "profile_info"
	KeyNotBefore             = "not_before"
)

// Fields returns the token record as storage key/value pairs. Empty fields
// are omitted so absent optional values do not create empty keys.
func (t *Tokens) Fields() map[string]string {
	fields := map[string]string{
		KeyIDToken:               t.IDToken,
		KeyRefreshToken:          t.RefreshToken,
		KeyRefreshTokenExpiresIn: t.RefreshTokenExpiresIn,
		KeyIDTokenExpiresIn:      t.IDTokenExpiresIn,
		KeyScope:                 t.Scope,
		KeyTokenType:             t.TokenType,
		KeyProfileInfo:           t.ProfileInfo,
		KeyNotBefore:             t.NotBefore,
	}
	for key, value := range fields {
		if value == "" {
			delete(fields, key)
		}
	}
	return fields
}

// TokensFromFields rebuilds a token record from storage key/value pairs.
// Unrecognized keys are ignored.
func TokensFromFields(fields map[string]string) *Tokens {
	return &Tokens{
		IDToken:               fields[KeyIDToken],
		RefreshToken:          fields[KeyRefreshToken],
		RefreshTokenExpiresIn: fields[KeyRefreshTokenExpiresIn],
		IDTokenExpiresIn:      fields[KeyIDTokenExpiresIn],
		Scope:                 fields[KeyScope],
		TokenType:             fields[KeyTokenType],
		ProfileInfo:           fields[KeyProfileInfo],
		NotBefore:             fields[KeyNotBefore],
	}
}

// ToOAuth2Token converts the record to an oauth2.Token for use with
// transports that expect one. The ID token doubles as the bearer credential
// for the device registry, so it is mapped to AccessToken as well as kept
// in the token's extra data.
func (t *Tokens) ToOAuth2Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  t.IDToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.IDToken != "" {
		token = token.WithExtra(map[string]interface{}{
			"id_token": t.IDToken,
		})
	}
	return token
}

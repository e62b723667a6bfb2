package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	// verifierBytes is the number of random bytes for the PKCE code verifier.
	// 28 bytes hex-encode to 56 characters, within the 43-128 character range
	// RFC 7636 requires.
	verifierBytes = 28

	// nonceLength and stateLength are the lengths of the anti-replay values
	// sent with an authorization request.
	nonceLength = 12
	stateLength = 6
)

// randomAlphabet is the character set for nonce and state values.
const randomAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PKCEChallenge holds the verifier/challenge pair for one interactive
// authorization attempt. The verifier is kept secret by the client; only the
// challenge is sent in the authorization request.
type PKCEChallenge struct {
	// CodeVerifier is 28 cryptographically random bytes, hex-encoded.
	CodeVerifier string

	// CodeChallenge is the SHA256 hash of the verifier (base64url, no padding).
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// GenerateCodeVerifier returns a fresh PKCE code verifier: 28 random bytes
// from a cryptographically secure source, hex-encoded to 56 characters.
func GenerateCodeVerifier() (string, error) {
	buf := make([]byte, verifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes for PKCE verifier: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateHash computes SHA256 over the UTF-8 bytes of s and returns the
// digest base64url-encoded without padding. The output never contains
// '+', '/' or '='.
func GenerateHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GeneratePKCE generates a new PKCE code verifier and its S256 challenge.
//
// Returns a PKCEChallenge ready for use in an authorization request.
func GeneratePKCE() (*PKCEChallenge, error) {
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return nil, err
	}

	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       GenerateHash(verifier),
		CodeChallengeMethod: "S256",
	}, nil
}

// randomString returns n characters drawn uniformly from randomAlphabet
// using a cryptographically secure source.
func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(randomAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		out[i] = randomAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// GenerateNonce generates the random nonce sent with an authorization
// request and echoed back inside the ID token.
func GenerateNonce() (string, error) {
	return randomString(nonceLength)
}

// GenerateState generates the random state parameter that links an
// authorization response back to the request that produced it.
func GenerateState() (string, error) {
	return randomString(stateLength)
}

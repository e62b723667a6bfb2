// Package relay holds the thin JSON-over-HTTP clients around the session
// core: the backend refresh-token relay (push/pull) and the device
// registry. Transport failures and undecodable bodies are reported as
// distinct error categories so callers can tell them apart.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gdconnect/pkg/logging"
)

// Error categories for relay calls. Wrapped errors carry endpoint and
// status context; match with errors.Is.
var (
	// ErrTransport covers request failures and non-OK HTTP statuses.
	ErrTransport = errors.New("relay transport error")

	// ErrDecode covers response bodies that are not valid JSON.
	ErrDecode = errors.New("relay decode error")
)

// DefaultHTTPTimeout is the default timeout for relay requests.
const DefaultHTTPTimeout = 30 * time.Second

// Identity is the account identity posted to the relay endpoints.
type Identity struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PushRecord is the payload sent to the push endpoint.
type PushRecord struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RT     string `json:"rt"`
	Time   string `json:"time"`
	Date   string `json:"date"`
	Expire string `json:"expire"`
}

// PullResult is one element of the pull endpoint's payload array.
type PullResult struct {
	RT     string `json:"rt"`
	Expire string `json:"expire"`
}

// Client talks to the backend token-relay endpoints.
type Client struct {
	httpClient *http.Client
	pushURL    string
	pullURL    string
}

// NewClient creates a relay client. A nil httpClient gets a default with
// DefaultHTTPTimeout.
func NewClient(pushURL, pullURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{
		httpClient: httpClient,
		pushURL:    pushURL,
		pullURL:    pullURL,
	}
}

// Push sends a refresh-token record to the backend.
func (c *Client) Push(ctx context.Context, record PushRecord) error {
	if c.pushURL == "" {
		return fmt.Errorf("%w: push endpoint not configured", ErrTransport)
	}

	logging.Debug("Relay", "pushing refresh token for %s", record.Email)
	var ack json.RawMessage
	return c.postJSON(ctx, c.pushURL, record, &ack)
}

// Pull fetches the stored refresh token for an account identity. The
// backend answers with a payload array whose first element carries the
// token.
func (c *Client) Pull(ctx context.Context, identity Identity) (*PullResult, error) {
	if c.pullURL == "" {
		return nil, fmt.Errorf("%w: pull endpoint not configured", ErrTransport)
	}

	var decoded struct {
		Payload []PullResult `json:"payload"`
	}
	if err := c.postJSON(ctx, c.pullURL, identity, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload for %s", ErrDecode, identity.Email)
	}
	return &decoded.Payload[0], nil
}

// postJSON posts body as JSON and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d: %s", ErrTransport, url, resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, url, err)
	}
	return nil
}

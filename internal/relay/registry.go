package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"gdconnect/pkg/logging"
)

// Device describes an asset registered with the device registry.
type Device struct {
	Type    string   `json:"type"`
	AssetID string   `json:"assetId"`
	Sensors []string `json:"sensors"`
}

// Registry talks to the device-registry endpoint with bearer credentials.
type Registry struct {
	assetsURL  string
	httpClient *http.Client
}

// NewRegistry creates a registry client authenticating with the given
// bearer token. The token is wrapped in an oauth2 token source so the
// Authorization header is applied by the transport.
func NewRegistry(assetsURL string, token *oauth2.Token, base *http.Client) *Registry {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return &Registry{
		assetsURL:  assetsURL,
		httpClient: oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)),
	}
}

// RegisterDevice registers a device. Failures are returned, not merely
// logged: callers decide how to surface them.
func (r *Registry) RegisterDevice(ctx context.Context, device Device) error {
	if r.assetsURL == "" {
		return fmt.Errorf("%w: device registry endpoint not configured", ErrTransport)
	}

	encoded, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("failed to marshal device payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.assetsURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, r.assetsURL, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: device registration returned status %d: %s", ErrTransport, resp.StatusCode, body)
	}

	logging.Info("Relay", "registered device %s (%s)", device.AssetID, device.Type)
	return nil
}

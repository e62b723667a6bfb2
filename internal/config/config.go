// Package config loads and validates the gdconnect configuration. Endpoint
// URLs, the OAuth client id and the redirect URIs are injected here rather
// than baked into the flow code.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default configuration file location, relative
// to the user's home directory.
const DefaultConfigPath = ".config/gdconnect/config.yaml"

// Config is the full gdconnect configuration.
type Config struct {
	// Issuer configures the OAuth2/OIDC authorization server.
	Issuer IssuerConfig `yaml:"issuer"`

	// RedirectURI is the single registered redirect target of the client.
	RedirectURI string `yaml:"redirectURI"`

	// PostLogoutRedirectURI is where the IdP sends the user after logout.
	PostLogoutRedirectURI string `yaml:"postLogoutRedirectURI"`

	// Relay configures the backend refresh-token relay endpoints.
	Relay RelayConfig `yaml:"relay"`

	// Registry configures the device-registry endpoint.
	Registry RegistryConfig `yaml:"registry"`

	// Storage selects and locates the durable store backend.
	Storage StorageConfig `yaml:"storage"`

	// CallbackPort is the port the local redirect listener binds to. It
	// must match the port of RedirectURI registered at the IdP.
	CallbackPort int `yaml:"callbackPort"`
}

// IssuerConfig identifies the authorization server and client.
type IssuerConfig struct {
	// BaseURL is the issuer base, e.g. https://login.example.com/tenant.
	// The oauth2/v2.0 authorize, token and logout paths are appended to it.
	BaseURL string `yaml:"baseURL"`

	// ClientID is the registered OAuth client id.
	ClientID string `yaml:"clientID"`

	// Scope is the space-separated scope string for authorization requests.
	Scope string `yaml:"scope"`
}

// RelayConfig holds the token-relay endpoints.
type RelayConfig struct {
	// PushURL receives refresh tokens keyed by account identity.
	PushURL string `yaml:"pushURL"`

	// PullURL returns the stored refresh token for a posted identity.
	PullURL string `yaml:"pullURL"`
}

// RegistryConfig holds the device-registry endpoint.
type RegistryConfig struct {
	// AssetsURL accepts device registration payloads.
	AssetsURL string `yaml:"assetsURL"`
}

// StorageConfig selects the durable store backend.
type StorageConfig struct {
	// Backend is one of file, keyring, sqlite, memory. Defaults to file.
	Backend string `yaml:"backend"`

	// Dir is the state directory for file and sqlite backends.
	Dir string `yaml:"dir"`
}

// Default returns the configuration defaults applied underneath a loaded
// file.
func Default() Config {
	return Config{
		Issuer: IssuerConfig{
			Scope: "openid offline_access profile",
		},
		RedirectURI:  "http://localhost:4200",
		CallbackPort: 4200,
		Storage: StorageConfig{
			Backend: "file",
		},
	}
}

// Load reads the configuration file at path (DefaultConfigPath under the
// home directory when empty) and applies defaults. A missing file yields
// the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, DefaultConfigPath)
	}

	// #nosec G304 -- path comes from configuration/flags, not remote input
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// applyDefaults fills fields yaml.Unmarshal left empty. Unmarshal writes
// over the seeded defaults when the file sets a field, so only zero values
// need backfilling.
func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Issuer.Scope == "" {
		cfg.Issuer.Scope = defaults.Issuer.Scope
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = defaults.RedirectURI
	}
	if cfg.CallbackPort == 0 {
		cfg.CallbackPort = defaults.CallbackPort
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
}

// Validate checks the configuration for the errors that must fail fast.
// An empty issuer base URL is fatal: every operation needs it.
func (c Config) Validate() error {
	if c.Issuer.BaseURL == "" {
		return fmt.Errorf("configuration error: issuer baseURL is empty")
	}
	if c.Issuer.ClientID == "" {
		return fmt.Errorf("configuration error: issuer clientID is empty")
	}
	if c.CallbackPort <= 0 || c.CallbackPort > 65535 {
		return fmt.Errorf("configuration error: callbackPort %d out of range", c.CallbackPort)
	}
	return nil
}

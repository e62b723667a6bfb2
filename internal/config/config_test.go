package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openid offline_access profile", cfg.Issuer.Scope)
	assert.Equal(t, "http://localhost:4200", cfg.RedirectURI)
	assert.Equal(t, 4200, cfg.CallbackPort)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
issuer:
  baseURL: https://login.example.com/tenant
  clientID: client-123
redirectURI: http://localhost:9999
callbackPort: 9999
storage:
  backend: sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://login.example.com/tenant", cfg.Issuer.BaseURL)
	assert.Equal(t, "client-123", cfg.Issuer.ClientID)
	assert.Equal(t, "http://localhost:9999", cfg.RedirectURI)
	assert.Equal(t, 9999, cfg.CallbackPort)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	// Unset fields keep their defaults.
	assert.Equal(t, "openid offline_access profile", cfg.Issuer.Scope)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("issuer: [not a mapping"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("empty base URL is fatal", func(t *testing.T) {
		cfg := Default()
		cfg.Issuer.ClientID = "client-123"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "baseURL")
	})

	t.Run("empty client id is fatal", func(t *testing.T) {
		cfg := Default()
		cfg.Issuer.BaseURL = "https://login.example.com/tenant"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clientID")
	})

	t.Run("valid config passes", func(t *testing.T) {
		cfg := Default()
		cfg.Issuer.BaseURL = "https://login.example.com/tenant"
		cfg.Issuer.ClientID = "client-123"
		assert.NoError(t, cfg.Validate())
	})
}

package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestClient_Push(t *testing.T) {
	var received PushRecord
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil)
	record := PushRecord{
		ID:     1,
		Name:   "GasBeacon1",
		Email:  "gasbeacon.1@cosys-demo.de",
		RT:     "rt-value",
		Time:   "10:30:00",
		Date:   "2024-02-01",
		Expire: "1209600",
	}
	require.NoError(t, c.Push(context.Background(), record))
	assert.Equal(t, record, received)
}

func TestClient_Push_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil)
	err := c.Push(context.Background(), PushRecord{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_Push_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil)
	err := c.Push(context.Background(), PushRecord{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrTransport, "decode failures are a distinct category")
}

func TestClient_Pull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var identity Identity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&identity))
		assert.Equal(t, "gasbeacon.1@cosys-demo.de", identity.Email)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"payload":[{"rt":"rt-value","expire":"1209600"}]}`))
	}))
	defer server.Close()

	c := NewClient("", server.URL, nil)
	result, err := c.Pull(context.Background(), Identity{
		ID:    1,
		Name:  "GasBeacon1",
		Email: "gasbeacon.1@cosys-demo.de",
	})
	require.NoError(t, err)
	assert.Equal(t, "rt-value", result.RT)
	assert.Equal(t, "1209600", result.Expire)
}

func TestClient_Pull_EmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payload":[]}`))
	}))
	defer server.Close()

	c := NewClient("", server.URL, nil)
	_, err := c.Pull(context.Background(), Identity{Email: "gasbeacon.1@cosys-demo.de"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient("", "", nil)

	err := c.Push(context.Background(), PushRecord{})
	assert.ErrorIs(t, err, ErrTransport)

	_, err = c.Pull(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestRegistry_RegisterDevice(t *testing.T) {
	var received Device
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	registry := NewRegistry(server.URL, &oauth2.Token{
		AccessToken: "id-token-value",
		TokenType:   "Bearer",
	}, nil)

	device := Device{Type: "pac", AssetID: "GasBeacon1", Sensors: []string{"CH4"}}
	require.NoError(t, registry.RegisterDevice(context.Background(), device))

	assert.Equal(t, "Bearer id-token-value", auth)
	assert.Equal(t, device, received)
}

func TestRegistry_RegisterDevice_FailureIsRaised(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	registry := NewRegistry(server.URL, &oauth2.Token{AccessToken: "t", TokenType: "Bearer"}, nil)
	err := registry.RegisterDevice(context.Background(), Device{Type: "pac", AssetID: "x9000"})
	require.Error(t, err, "registration failures must be raised, not just logged")
	assert.ErrorIs(t, err, ErrTransport)
}

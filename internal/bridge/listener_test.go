package bridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startListener(t *testing.T) (*Listener, string, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener(New(), 0) // random port
	baseURL, err := l.Start(ctx)
	if err != nil {
		cancel()
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(l.Stop)
	return l, baseURL, cancel
}

func TestListener_FragmentRelayRoundTrip(t *testing.T) {
	l, baseURL, cancel := startListener(t)
	defer cancel()

	// The browser first loads the landing page...
	resp, err := http.Get(baseURL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(page), "authorization-response") {
		t.Error("landing page does not re-submit the fragment")
	}

	// ...then its script re-submits the fragment.
	resp, err = http.Post(baseURL+"/authorization-response", "text/plain",
		strings.NewReader("#code=abc123&state=xyz"))
	if err != nil {
		t.Fatalf("POST fragment failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("POST fragment status = %d, want 204", resp.StatusCode)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	result, err := l.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if result.Code != "abc123" || result.State != "xyz" {
		t.Errorf("Wait() = %+v, want code=abc123 state=xyz", result)
	}
}

func TestListener_QueryModeResponse(t *testing.T) {
	l, baseURL, cancel := startListener(t)
	defer cancel()

	resp, err := http.Get(baseURL + "/?error=access_denied&error_description=denied")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	result, err := l.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if !result.IsError() || result.Error != "access_denied" {
		t.Errorf("Wait() = %+v, want access_denied error", result)
	}
}

func TestListener_RejectsNonResponseBody(t *testing.T) {
	_, baseURL, cancel := startListener(t)
	defer cancel()

	resp, err := http.Post(baseURL+"/authorization-response", "text/plain",
		strings.NewReader("#not-a-response"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListener_OnlyFirstResponseDelivered(t *testing.T) {
	l, baseURL, cancel := startListener(t)
	defer cancel()

	for i := 0; i < 2; i++ {
		resp, err := http.Post(baseURL+"/authorization-response", "text/plain",
			strings.NewReader(fmt.Sprintf("#code=code-%d", i)))
		if err != nil {
			// The listener shuts itself down shortly after the first
			// delivery; a failed second POST is acceptable.
			break
		}
		resp.Body.Close()
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	result, err := l.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if result.Code != "code-0" {
		t.Errorf("Code = %q, want the first delivered code", result.Code)
	}
}

func TestListener_ContextCancellation(t *testing.T) {
	l, _, cancel := startListener(t)

	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if _, err := l.Wait(waitCtx); err == nil {
		t.Error("Wait() succeeded after cancellation, want error")
	}
}

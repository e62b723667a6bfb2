package bridge

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gdconnect/pkg/logging"
)

// ResponseTimeout is how long the listener waits for the redirect to come
// back from the authorization server.
const ResponseTimeout = 10 * time.Minute

// maxFragmentBody bounds the relayed fragment size. Real responses are a
// few hundred bytes.
const maxFragmentBody = 16 * 1024

//go:embed templates/redirect.html
var redirectPageHTML string

// Listener is a temporary loopback HTTP server that receives the
// authorization redirect. The IdP delivers the response in the URL
// fragment, which never reaches the server in the HTTP request itself, so
// the listener serves a small page whose script re-submits the fragment.
// The parsed response is fed through the bridge and handed to Wait.
type Listener struct {
	bridge   *Bridge
	port     int
	server   *http.Server
	listener net.Listener
	resultCh chan *AuthResponse
	errorCh  chan error
	once     sync.Once
	baseURL  string
}

// NewListener creates a listener on the given loopback port that feeds
// responses through b.
func NewListener(b *Bridge, port int) *Listener {
	return &Listener{
		bridge:   b,
		port:     port,
		resultCh: make(chan *AuthResponse, 1),
		errorCh:  make(chan error, 1),
	}
}

// Start binds the listener and begins serving. The server stops when the
// context is cancelled. Returns the base redirect URL to register in the
// authorization request.
func (l *Listener) Start(ctx context.Context) (string, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", l.port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to start redirect listener on %s: %w", addr, err)
	}

	l.listener = ln
	l.port = ln.Addr().(*net.TCPAddr).Port
	l.baseURL = fmt.Sprintf("http://localhost:%d", l.port)

	mux := http.NewServeMux()
	mux.HandleFunc("/authorization-response", l.handleFragment)
	mux.HandleFunc("/", l.handleRedirect)

	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			select {
			case l.errorCh <- err:
			default:
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Stop()
		return nil
	})
	go func() {
		_ = g.Wait()
	}()

	logging.Debug("Bridge", "redirect listener started at %s", l.baseURL)
	return l.baseURL, nil
}

// Wait blocks until an authorization response arrives, the listener fails,
// the timeout elapses, or the context is cancelled.
func (l *Listener) Wait(ctx context.Context) (*AuthResponse, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, ResponseTimeout)
	defer cancel()

	select {
	case resp := <-l.resultCh:
		return resp, nil
	case err := <-l.errorCh:
		return nil, err
	case <-timeoutCtx.Done():
		return nil, timeoutCtx.Err()
	}
}

// handleRedirect serves the redirect landing. When the response arrives in
// the query string it is delivered directly; otherwise the relay page is
// served so the fragment can be re-submitted by the browser.
func (l *Listener) handleRedirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.RawQuery != "" && l.deliver(r.URL.String()) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<p>Sign-in received. You can close this window.</p>")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, redirectPageHTML)
}

// handleFragment receives the fragment re-submitted by the relay page.
func (l *Listener) handleFragment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFragmentBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if !l.deliver(string(body)) {
		http.Error(w, "not an authorization response", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deliver parses raw and, for a recognized response, dispatches it through
// the bridge and hands it to Wait exactly once.
func (l *Listener) deliver(raw string) bool {
	params := extractResponseParams(raw)
	if params == nil {
		return false
	}

	l.once.Do(func() {
		resp := responseFromParams(params)
		l.bridge.dispatch(resp)
		select {
		case l.resultCh <- resp:
		default:
		}

		// Let the final HTTP response flush before tearing down.
		go func() {
			time.Sleep(1 * time.Second)
			l.Stop()
		}()
	})
	return true
}

// Stop gracefully shuts down the listener.
func (l *Listener) Stop() {
	if l.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = l.server.Shutdown(ctx)
	}
	if l.listener != nil {
		_ = l.listener.Close()
	}
}

// RedirectURI returns the redirect URI to use in authorization requests.
func (l *Listener) RedirectURI() string {
	return l.baseURL
}

// Port returns the bound port.
func (l *Listener) Port() int {
	return l.port
}

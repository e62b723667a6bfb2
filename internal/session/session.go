// Package session owns the authentication state machine: the current
// account, the in-flight PKCE pair, the per-account token cache, and the
// full authorization-code-with-PKCE flow against the IdP.
//
// The defining constraint is the process-restart boundary. The interactive
// flow hands the user to the browser and may not see them come back in the
// same process: everything the follow-up exchange needs is written to the
// durable store before navigating, and a later process resumes from that
// state alone.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gdconnect/internal/bridge"
	"gdconnect/internal/ledger"
	"gdconnect/internal/relay"
	"gdconnect/internal/store"
	"gdconnect/pkg/logging"
	"gdconnect/pkg/oauth"
)

// State is the position of the session in the interactive flow.
type State int

const (
	StateIdle State = iota
	StatePkceIssued
	StateAwaitingRedirect
	StateCodeReceived
	StateExchanging
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePkceIssued:
		return "pkce_issued"
	case StateAwaitingRedirect:
		return "awaiting_redirect"
	case StateCodeReceived:
		return "code_received"
	case StateExchanging:
		return "exchanging"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TaskSendRefreshToken is the continuation-ledger task name for "push the
// fresh refresh token to the backend once the exchange completes".
const TaskSendRefreshToken = "send_refresh_token"

// Storage keys for account identity and flow-status flags. Together with
// the token field keys in pkg/oauth they form the fixed storage namespace.
const (
	keyAccountID    = "account_id"
	keyAccountName  = "account_name"
	keyAccountEmail = "account_email"
	keyCode         = "code"
	keyCodeVerifier = "code_verifier"

	// Flow-status flags. Requested is set before navigating away; OK is
	// set only after a successful exchange, so a reload can tell the two
	// outcomes apart.
	keyInteractiveRequested = "acquired_token_interactive_requested"
	keyInteractiveOK        = "acquired_token_interactive_ok"
)

// flowStorageKeys is the part of the namespace cleared wholesale once a
// successful exchange has been transferred into in-memory state.
var flowStorageKeys = []string{
	oauth.KeyIDToken,
	oauth.KeyRefreshToken,
	oauth.KeyRefreshTokenExpiresIn,
	oauth.KeyIDTokenExpiresIn,
	oauth.KeyScope,
	oauth.KeyTokenType,
	oauth.KeyProfileInfo,
	oauth.KeyNotBefore,
	keyCode,
	keyCodeVerifier,
}

// Config carries the injected endpoints and identifiers. Nothing here is
// discovered; the client is registered for exactly one IdP and one
// redirect URI.
type Config struct {
	// BaseURL is the issuer base; the oauth2/v2.0 paths are appended.
	BaseURL string

	// ClientID is the registered OAuth client id.
	ClientID string

	// Scope is the space-separated scope string. Defaults to
	// "openid offline_access profile".
	Scope string

	// RedirectURI is the registered redirect target.
	RedirectURI string

	// PostLogoutRedirectURI is passed to the logout endpoint.
	PostLogoutRedirectURI string

	// AssetsURL is the device-registry endpoint.
	AssetsURL string

	// NavigationWait is how long AcquireTokenInteractive blocks after
	// starting the navigation, to let it begin before the caller
	// proceeds. Zero means return immediately.
	NavigationWait time.Duration
}

// Deps are the collaborators injected at construction.
type Deps struct {
	Store     store.Store
	Ledger    *ledger.Ledger
	Relay     *relay.Client
	Navigator Navigator

	// HTTPClient is used for token-endpoint calls. Defaults to a client
	// with a 30s timeout.
	HTTPClient *http.Client

	// Accounts overrides the default roster (tests). Defaults to
	// DefaultAccounts().
	Accounts []*Account
}

// Session is the authentication state machine. Its exported operations are
// expected to run one at a time; the internal lock keeps the shared state
// (current account, PKCE pair, token cache) consistent if callers overlap.
type Session struct {
	mu         sync.Mutex
	cfg        Config
	accounts   []*Account
	current    *Account
	state      State
	pkce       *oauth.PKCEChallenge
	store      store.Store
	ledger     *ledger.Ledger
	relay      *relay.Client
	nav        Navigator
	httpClient *http.Client
	lastPushed map[string]relay.PushRecord
}

// New creates a session over the fixed account roster. The current account
// defaults to the first roster entry. An empty base URL is a configuration
// error and fails construction.
func New(cfg Config, deps Deps) (*Session, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("configuration error: issuer base URL is empty")
	}
	if cfg.Scope == "" {
		cfg.Scope = "openid offline_access profile"
	}

	accounts := deps.Accounts
	if accounts == nil {
		accounts = DefaultAccounts()
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("configuration error: account roster is empty")
	}
	seen := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		if seen[account.Email] {
			return nil, fmt.Errorf("configuration error: duplicate account email %s", account.Email)
		}
		seen[account.Email] = true
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: relay.DefaultHTTPTimeout}
	}

	nav := deps.Navigator
	if nav == nil {
		nav = BrowserNavigator{}
	}

	return &Session{
		cfg:        cfg,
		accounts:   accounts,
		current:    accounts[0],
		state:      StateIdle,
		store:      deps.Store,
		ledger:     deps.Ledger,
		relay:      deps.Relay,
		nav:        nav,
		httpClient: httpClient,
		lastPushed: make(map[string]relay.PushRecord),
	}, nil
}

// State returns the current flow state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setStateLocked(next State) {
	if s.state != next {
		logging.Debug("Session", "state %s -> %s", s.state, next)
		s.state = next
	}
}

// CurrentAccount returns the account the session currently acts as.
func (s *Session) CurrentAccount() *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Accounts returns the roster.
func (s *Session) Accounts() []*Account {
	return s.accounts
}

// AccountByEmail returns the roster entry with the given email, or
// ErrUnknownAccount.
func (s *Session) AccountByEmail(email string) (*Account, error) {
	for _, account := range s.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, email)
}

// SelectAccount makes the account with the given email current and
// persists its identity so a later process resumes as the same account.
func (s *Session) SelectAccount(ctx context.Context, email string) (*Account, error) {
	account, err := s.AccountByEmail(email)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistIdentityLocked(ctx, account); err != nil {
		return nil, err
	}
	s.current = account
	return account, nil
}

// Token returns the cached token record for the account (the current
// account when nil), or nil if none is cached. The roster is small and
// bounded, so a linear scan by email is fine.
func (s *Session) Token(account *Account) *oauth.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenLocked(account)
}

func (s *Session) tokenLocked(account *Account) *oauth.Tokens {
	if account == nil {
		account = s.current
	}
	for _, candidate := range s.accounts {
		if candidate.Email == account.Email {
			return candidate.Tokens
		}
	}
	return nil
}

// SetToken attaches a token record to the roster entry matching the
// account's email, replacing any previous record.
func (s *Session) SetToken(account *Account, tokens *oauth.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTokenLocked(account, tokens)
}

func (s *Session) setTokenLocked(account *Account, tokens *oauth.Tokens) error {
	for _, candidate := range s.accounts {
		if candidate.Email == account.Email {
			candidate.Tokens = tokens
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownAccount, account.Email)
}

// AcquireTokenInteractive starts the interactive authorization flow for an
// account: a fresh PKCE pair and nonce/state, everything the exchange will
// need persisted to durable storage, then a full-page navigation to the
// authorization endpoint. Returns the authorization URL (also handed to
// the navigator).
//
// The navigation tears down the in-memory flow in the original browser
// setting; here the process may simply exit. Either way, only what was
// persisted before this call returns is available afterwards.
func (s *Session) AcquireTokenInteractive(ctx context.Context, account *Account) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.AccountByEmail(account.Email); err != nil {
		return "", err
	}

	pkce, err := oauth.GeneratePKCE()
	if err != nil {
		return "", err
	}
	nonce, err := oauth.GenerateNonce()
	if err != nil {
		return "", err
	}
	state, err := oauth.GenerateState()
	if err != nil {
		return "", err
	}
	s.pkce = pkce
	s.setStateLocked(StatePkceIssued)

	flowID := uuid.NewString()

	// Everything needed after the restart goes to durable storage before
	// the navigation: identity, verifier, flags, and the pending record.
	if err := s.persistIdentityLocked(ctx, account); err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, keyCodeVerifier, pkce.CodeVerifier); err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, keyInteractiveRequested, "true"); err != nil {
		return "", err
	}
	if err := s.store.Delete(ctx, keyInteractiveOK); err != nil {
		return "", err
	}
	op := &PendingOp{
		Kind:         KindExchangeCode,
		FlowID:       flowID,
		CodeVerifier: pkce.CodeVerifier,
		State:        state,
		Nonce:        nonce,
		CreatedAt:    time.Now(),
	}
	if err := savePendingOp(ctx, s.store, op); err != nil {
		return "", err
	}

	authURL := s.buildAuthorizationURL(account, pkce, nonce, state)
	s.current = account
	s.setStateLocked(StateAwaitingRedirect)

	logging.Info("Session", "starting interactive authorization for %s (flow %s)", account.Email, flowID)
	if err := s.nav.Navigate(authURL); err != nil {
		return authURL, err
	}

	if s.cfg.NavigationWait > 0 {
		select {
		case <-time.After(s.cfg.NavigationWait):
		case <-ctx.Done():
			return authURL, ctx.Err()
		}
	}
	return authURL, nil
}

// buildAuthorizationURL assembles the authorization URL with pre-encoded
// query pairs in the order the IdP is used to seeing them.
func (s *Session) buildAuthorizationURL(account *Account, pkce *oauth.PKCEChallenge, nonce, state string) string {
	pairs := []string{
		"client_id=" + s.cfg.ClientID,
		"scope=" + encodeQueryValue(s.cfg.Scope),
		"redirect_uri=" + url.QueryEscape(s.cfg.RedirectURI),
		"response_mode=fragment",
		"response_type=code",
		"code_challenge=" + pkce.CodeChallenge,
		"code_challenge_method=" + pkce.CodeChallengeMethod,
		"login_hint=" + url.QueryEscape(account.Email),
		"nonce=" + nonce,
		"state=" + state,
	}

	authURL := s.cfg.BaseURL + "/oauth2/v2.0/authorize"
	for _, pair := range pairs {
		authURL = oauth.AppendQueryString(authURL, pair)
	}
	return authURL
}

// encodeQueryValue escapes a value for a query string using %20 for
// spaces (QueryEscape's '+' is valid but not what the IdP documents).
func encodeQueryValue(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// HandleAuthResponse consumes an authorization response delivered by the
// redirect bridge: it verifies the echoed state against the pending
// record, persists the code, and runs the code exchange.
func (s *Session) HandleAuthResponse(ctx context.Context, resp *bridge.AuthResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp.IsError() {
		s.setStateLocked(StateFailed)
		if resp.ErrorDescription != "" {
			return fmt.Errorf("%w: %s: %s", ErrAuthorizationFailed, resp.Error, resp.ErrorDescription)
		}
		return fmt.Errorf("%w: %s", ErrAuthorizationFailed, resp.Error)
	}

	op, err := loadPendingOp(ctx, s.store)
	if err != nil {
		return err
	}
	if op.Kind != KindExchangeCode {
		return fmt.Errorf("%w: received a code with no exchange pending", ErrNoPendingFlow)
	}
	if op.State != "" && resp.State != op.State {
		s.setStateLocked(StateFailed)
		logging.Warn("Session", "state mismatch on redirect (flow %s): possible replay", op.FlowID)
		return fmt.Errorf("%w: issued %q, received %q", ErrStateMismatch, op.State, resp.State)
	}

	if err := s.store.Set(ctx, keyCode, resp.Code); err != nil {
		return err
	}
	s.setStateLocked(StateCodeReceived)

	return s.exchangeCodeLocked(ctx)
}

// Resume finishes a pending code exchange in a fresh process. Returns
// false when nothing is pending or the code has not arrived yet.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, err := loadPendingOp(ctx, s.store)
	if err != nil {
		return false, err
	}
	if op.Kind != KindExchangeCode {
		return false, nil
	}
	if _, err := s.store.Get(ctx, keyCode); err != nil {
		return false, nil
	}

	logging.Info("Session", "resuming pending code exchange (flow %s)", op.FlowID)
	s.setStateLocked(StateCodeReceived)
	return true, s.exchangeCodeLocked(ctx)
}

// ExchangeCodeForTokens exchanges the persisted authorization code for
// tokens. Exported for flows where the bridge and the session live in
// different processes.
func (s *Session) ExchangeCodeForTokens(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchangeCodeLocked(ctx)
}

func (s *Session) exchangeCodeLocked(ctx context.Context) error {
	code, err := s.store.Get(ctx, keyCode)
	if err != nil {
		return fmt.Errorf("%w: no authorization code in storage", ErrNoPendingFlow)
	}
	verifier, err := s.store.Get(ctx, keyCodeVerifier)
	if err != nil {
		return fmt.Errorf("%w: no code verifier in storage", ErrNoPendingFlow)
	}
	if err := s.loadCurrentAccountLocked(ctx); err != nil {
		return err
	}

	s.setStateLocked(StateExchanging)

	fields, tokens, err := s.tokenRequest(ctx, []string{
		"client_id=" + s.cfg.ClientID,
		"grant_type=authorization_code",
		"code=" + code,
		"code_verifier=" + verifier,
	})
	if err != nil {
		// The OK flag stays unset so the next invocation can report the
		// failed interactive attempt.
		s.setStateLocked(StateFailed)
		return err
	}

	// Transfer the response into durable storage (for the restore after
	// the logout round trip) and into the in-memory cache.
	for key, value := range fields {
		if err := s.store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	if err := s.setTokenLocked(s.current, tokens); err != nil {
		return err
	}

	// A push scheduled before the redirect is executed now, in the
	// process that ended up completing the flow.
	if s.ledger != nil {
		next, err := s.ledger.PeekNext(ctx)
		if err != nil {
			return err
		}
		if next == TaskSendRefreshToken {
			if err := s.pushRefreshTokenLocked(ctx, s.current, false); err != nil {
				return err
			}
			if err := s.ledger.Complete(ctx, TaskSendRefreshToken); err != nil {
				return err
			}
		}
	}

	if err := s.store.Set(ctx, keyInteractiveOK, "true"); err != nil {
		return err
	}
	if err := clearPendingOp(ctx, s.store); err != nil {
		return err
	}
	s.pkce = nil
	s.setStateLocked(StateAuthenticated)
	logging.Info("Session", "code exchange completed for %s", s.current.Email)

	// Terminate the IdP's own session; the post-logout redirect brings
	// the user back to the app, which restores state from storage.
	return s.logoutLocked()
}

// RefreshTokens obtains a fresh token set with the account's cached
// refresh token, overwriting the cache on success.
func (s *Session) RefreshTokens(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.tokenLocked(account)
	if tokens == nil {
		return fmt.Errorf("%w: %s", ErrNoCachedToken, account.Name)
	}

	_, fresh, err := s.tokenRequest(ctx, []string{
		"client_id=" + s.cfg.ClientID,
		"grant_type=refresh_token",
		"refresh_token=" + url.QueryEscape(tokens.RefreshToken),
	})
	if err != nil {
		return err
	}

	return s.setTokenLocked(account, fresh)
}

// PushRefreshToken sends the account's cached refresh token to the backend
// relay. An unchanged record is skipped unless force is set.
func (s *Session) PushRefreshToken(ctx context.Context, account *Account, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushRefreshTokenLocked(ctx, account, force)
}

func (s *Session) pushRefreshTokenLocked(ctx context.Context, account *Account, force bool) error {
	tokens := s.tokenLocked(account)
	if tokens == nil {
		return fmt.Errorf("%w: %s", ErrNoCachedToken, account.Name)
	}

	date, timeOfDay := splitTimestamp(time.Now().UTC())
	record := relay.PushRecord{
		ID:     account.ID,
		Name:   account.Name,
		Email:  account.Email,
		RT:     tokens.RefreshToken,
		Time:   timeOfDay,
		Date:   date,
		Expire: tokens.RefreshTokenExpiresIn,
	}

	if !force {
		if last, ok := s.lastPushed[account.Email]; ok && last.RT == record.RT && last.Expire == record.Expire {
			logging.Debug("Session", "skipping unchanged token push for %s", account.Email)
			return nil
		}
	}

	if err := s.relay.Push(ctx, record); err != nil {
		return err
	}
	s.lastPushed[account.Email] = record
	return nil
}

// PullRefreshToken fetches the account's refresh token from the backend
// relay and caches it as a bearer token record.
func (s *Session) PullRefreshToken(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.relay.Pull(ctx, account.Identity())
	if err != nil {
		return err
	}

	return s.setTokenLocked(account, &oauth.Tokens{
		RefreshToken:          result.RT,
		RefreshTokenExpiresIn: result.Expire,
		TokenType:             "Bearer",
	})
}

// RegisterDevice registers a device with the registry using the current
// account's ID token as the bearer credential.
func (s *Session) RegisterDevice(ctx context.Context, device relay.Device) error {
	s.mu.Lock()
	tokens := s.tokenLocked(s.current)
	current := s.current
	s.mu.Unlock()

	if tokens == nil || tokens.IDToken == "" {
		return fmt.Errorf("%w: %s (acquire a token first)", ErrNoCachedToken, current.Name)
	}

	registry := relay.NewRegistry(s.cfg.AssetsURL, tokens.ToOAuth2Token(), s.httpClient)
	return registry.RegisterDevice(ctx, device)
}

// ScheduleTokenPush records that the refresh token should be pushed to the
// backend as soon as the next code exchange completes; the record survives
// the redirect in the continuation ledger.
func (s *Session) ScheduleTokenPush(ctx context.Context) error {
	return s.ledger.Schedule(ctx, TaskSendRefreshToken)
}

// RestoreFromStorage rebuilds session state in a fresh process after the
// post-exchange logout round trip: if a token record is in storage, the
// current account and its tokens are reconstructed and the flow-storage
// namespace is cleared. Returns whether anything was restored.
func (s *Session) RestoreFromStorage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(ctx, oauth.KeyIDToken); err != nil {
		return false, nil
	}

	if err := s.loadCurrentAccountLocked(ctx); err != nil {
		return false, err
	}

	fields := make(map[string]string)
	for _, key := range flowStorageKeys {
		if key == keyCode || key == keyCodeVerifier {
			continue
		}
		if value, err := s.store.Get(ctx, key); err == nil {
			fields[key] = value
		}
	}
	if err := s.setTokenLocked(s.current, oauth.TokensFromFields(fields)); err != nil {
		return false, err
	}

	if err := s.clearFlowStorageLocked(ctx); err != nil {
		return false, err
	}
	s.setStateLocked(StateAuthenticated)
	logging.Info("Session", "restored session for %s from storage", s.current.Email)
	return true, nil
}

// PersistTokens writes the account's cached token record back to durable
// storage so the next process can restore it. The inverse of the clearing
// RestoreFromStorage does.
func (s *Session) PersistTokens(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.tokenLocked(account)
	if tokens == nil {
		return fmt.Errorf("%w: %s", ErrNoCachedToken, account.Name)
	}
	for key, value := range tokens.Fields() {
		if err := s.store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// InteractiveFlowStatus reports the durable flow-status flags: whether an
// interactive acquisition was requested, and whether it completed.
func (s *Session) InteractiveFlowStatus(ctx context.Context) (requested, ok bool) {
	if value, err := s.store.Get(ctx, keyInteractiveRequested); err == nil {
		requested = value == "true"
	}
	if value, err := s.store.Get(ctx, keyInteractiveOK); err == nil {
		ok = value == "true"
	}
	return requested, ok
}

// Logout navigates to the IdP's logout endpoint to terminate its session
// cookie and returns the session to idle.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked()
}

func (s *Session) logoutLocked() error {
	logoutURL := oauth.AppendQueryString(
		s.cfg.BaseURL+"/oauth2/v2.0/logout",
		"post_logout_redirect_uri="+url.QueryEscape(s.cfg.PostLogoutRedirectURI),
	)
	s.setStateLocked(StateIdle)
	return s.nav.Navigate(logoutURL)
}

// Close releases in-memory flow material. Durable state is untouched.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pkce = nil
	return nil
}

// persistIdentityLocked writes the account identity keys.
func (s *Session) persistIdentityLocked(ctx context.Context, account *Account) error {
	if err := s.store.Set(ctx, keyAccountID, strconv.Itoa(account.ID)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, keyAccountName, account.Name); err != nil {
		return err
	}
	return s.store.Set(ctx, keyAccountEmail, account.Email)
}

// loadCurrentAccountLocked restores the current account from the identity
// keys. The roster entry is preferred so the token cache lands on the
// shared account object.
func (s *Session) loadCurrentAccountLocked(ctx context.Context) error {
	email, err := s.store.Get(ctx, keyAccountEmail)
	if err != nil {
		return ErrNoAccount
	}
	if _, err := s.store.Get(ctx, keyAccountID); err != nil {
		return ErrNoAccount
	}
	if _, err := s.store.Get(ctx, keyAccountName); err != nil {
		return ErrNoAccount
	}

	account, err := s.AccountByEmail(email)
	if err != nil {
		return fmt.Errorf("%w: stored email %s", ErrNoAccount, email)
	}
	s.current = account
	return nil
}

func (s *Session) clearFlowStorageLocked(ctx context.Context) error {
	for _, key := range flowStorageKeys {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// tokenRequest POSTs to the token endpoint with the given pre-encoded
// parameters appended to the URL query string (the convention this IdP
// accepts alongside a form body) and returns both the raw response fields
// and the typed token record.
func (s *Session) tokenRequest(ctx context.Context, params []string) (map[string]string, *oauth.Tokens, error) {
	tokenURL := s.cfg.BaseURL + "/oauth2/v2.0/token"
	for _, pair := range params {
		tokenURL = oauth.AppendQueryString(tokenURL, pair)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, body)
	}

	fields, err := decodeTokenResponse(body)
	if err != nil {
		return nil, nil, err
	}

	tokens := oauth.TokensFromFields(fields)
	if tokens.RefreshToken == "" {
		return nil, nil, fmt.Errorf("%w: response has no refresh_token", ErrDecode)
	}
	return fields, tokens, nil
}

// decodeTokenResponse flattens the token endpoint's JSON object into
// string fields. Values are opaque; numbers are kept as their literal
// representation.
func decodeTokenResponse(body []byte) (map[string]string, error) {
	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()

	raw := make(map[string]interface{})
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return fields, nil
}

// splitTimestamp splits a UTC instant into the date and time-of-day
// strings the relay expects.
func splitTimestamp(now time.Time) (date, timeOfDay string) {
	return now.Format("2006-01-02"), now.Format("15:04:05")
}

package cmd

import (
	"context"
	"fmt"

	"gdconnect/internal/config"
	"gdconnect/internal/ledger"
	"gdconnect/internal/relay"
	"gdconnect/internal/session"
	"gdconnect/internal/store"
)

// app bundles the wired collaborators a command needs. Built per
// invocation; the durable store carries all state between invocations.
type app struct {
	cfg     config.Config
	store   store.Store
	ledger  *ledger.Ledger
	session *session.Session
}

// newApp loads the configuration, opens the durable store and constructs
// the session. The returned app must be closed.
func newApp(nav session.Navigator) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	ldg := ledger.New(st)

	sess, err := session.New(session.Config{
		BaseURL:               cfg.Issuer.BaseURL,
		ClientID:              cfg.Issuer.ClientID,
		Scope:                 cfg.Issuer.Scope,
		RedirectURI:           cfg.RedirectURI,
		PostLogoutRedirectURI: cfg.PostLogoutRedirectURI,
		AssetsURL:             cfg.Registry.AssetsURL,
	}, session.Deps{
		Store:     st,
		Ledger:    ldg,
		Relay:     relay.NewClient(cfg.Relay.PushURL, cfg.Relay.PullURL, nil),
		Navigator: nav,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: st, ledger: ldg, session: sess}, nil
}

func (a *app) Close() error {
	_ = a.session.Close()
	return a.store.Close()
}

// resolveAccount picks the account for a command: the positional email
// argument when given, otherwise the account persisted in storage,
// otherwise the first roster entry.
func (a *app) resolveAccount(ctx context.Context, args []string) (*session.Account, error) {
	if len(args) > 0 {
		return a.session.AccountByEmail(args[0])
	}
	if email, err := a.store.Get(ctx, "account_email"); err == nil {
		if account, err := a.session.AccountByEmail(email); err == nil {
			return account, nil
		}
	}
	return a.session.Accounts()[0], nil
}

// restoreOrFail rebuilds session state from storage and returns an error
// when nothing could be restored. Commands that need a cached token call
// this first since every invocation starts a fresh process.
func (a *app) restoreOrFail(ctx context.Context) error {
	restored, err := a.session.RestoreFromStorage(ctx)
	if err != nil {
		return err
	}
	if !restored {
		return fmt.Errorf("%w: run 'gdconnect login' first", session.ErrNoCachedToken)
	}
	return nil
}

package cmd

import (
	"context"
	"testing"

	"gdconnect/internal/ledger"
	"gdconnect/internal/session"
	"gdconnect/internal/store"
)

func newTestApp(t *testing.T) *app {
	t.Helper()

	st := store.NewMemoryStore()
	sess, err := session.New(session.Config{
		BaseURL:  "https://idp.example.com/tenant",
		ClientID: "client-123",
	}, session.Deps{
		Store:     st,
		Navigator: session.NavigateFunc(func(string) error { return nil }),
	})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	return &app{store: st, ledger: ledger.New(st), session: sess}
}

func TestResolveAccountPrefersArgument(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	account, err := a.resolveAccount(ctx, []string{"firefighter.1@cosys-demo.de"})
	if err != nil {
		t.Fatalf("resolveAccount() error = %v", err)
	}
	if account.Email != "firefighter.1@cosys-demo.de" {
		t.Errorf("resolveAccount() = %s, want the argument account", account.Email)
	}
}

func TestResolveAccountUsesStoredIdentity(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if err := a.store.Set(ctx, "account_email", "gasbeacon.2@cosys-demo.de"); err != nil {
		t.Fatal(err)
	}

	account, err := a.resolveAccount(ctx, nil)
	if err != nil {
		t.Fatalf("resolveAccount() error = %v", err)
	}
	if account.Email != "gasbeacon.2@cosys-demo.de" {
		t.Errorf("resolveAccount() = %s, want the stored account", account.Email)
	}
}

func TestResolveAccountDefaultsToFirstRosterEntry(t *testing.T) {
	a := newTestApp(t)

	account, err := a.resolveAccount(context.Background(), nil)
	if err != nil {
		t.Fatalf("resolveAccount() error = %v", err)
	}
	if account.Email != "gasbeacon.1@cosys-demo.de" {
		t.Errorf("resolveAccount() = %s, want the first roster entry", account.Email)
	}
}

func TestResolveAccountRejectsUnknownEmail(t *testing.T) {
	a := newTestApp(t)

	_, err := a.resolveAccount(context.Background(), []string{"nobody@example.com"})
	if err == nil {
		t.Error("resolveAccount() with unknown email should fail")
	}
}

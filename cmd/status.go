package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"gdconnect/internal/store"
	"gdconnect/pkg/oauth"
)

// Status-specific flags
var (
	statusWait    bool
	statusTimeout time.Duration
)

// statusPollInterval is the fallback poll cadence for --wait on store
// backends that have no file to watch.
const statusPollInterval = 2 * time.Second

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show the durable authentication state: the stored account identity,
whether an interactive flow was requested and whether it completed, and
the cached ID token's claims if one is present.

With --wait, the command blocks until a pending interactive flow
completes, watching the store for changes.

Examples:
  gdconnect status          # Show current state
  gdconnect status --wait   # Block until a pending login completes`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusWait, "wait", false, "Block until a pending interactive flow completes")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 10*time.Minute, "How long --wait blocks before giving up")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if statusWait {
		if err := waitForCompletion(ctx, a); err != nil {
			return err
		}
	}

	return printStatus(ctx, a)
}

func printStatus(ctx context.Context, a *app) error {
	requested, ok := a.session.InteractiveFlowStatus(ctx)

	if email, err := a.store.Get(ctx, "account_email"); err == nil {
		name, _ := a.store.Get(ctx, "account_name")
		uiPrintf("Account:  %s (%s)\n", name, email)
	} else {
		uiPrintln("Account:  none stored")
	}

	switch {
	case ok:
		uiPrintln("Flow:     completed")
	case requested:
		uiPrintln("Flow:     requested, not completed")
	default:
		uiPrintln("Flow:     none")
	}

	idToken, err := a.store.Get(ctx, oauth.KeyIDToken)
	if err != nil {
		uiPrintln("Token:    none cached")
		return nil
	}

	claims, err := oauth.DecodeIDTokenClaims(idToken)
	if err != nil {
		uiPrintf("Token:    cached (claims undecodable: %v)\n", err)
		return nil
	}

	uiPrintln("Token:    cached")
	if name, okc := claims["name"].(string); okc {
		uiPrintf("  Name:   %s\n", name)
	}
	if email, okc := claims["email"].(string); okc {
		uiPrintf("  Email:  %s\n", email)
	}
	if exp, okc := claims["exp"].(float64); okc {
		uiPrintf("  Expiry: %s\n", time.Unix(int64(exp), 0).Format(time.RFC3339))
	}
	return nil
}

// waitForCompletion blocks until the interactive-flow OK flag appears in
// the store. File-backed stores are watched with fsnotify; everything
// else is polled.
func waitForCompletion(ctx context.Context, a *app) error {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	check := func() bool {
		_, ok := a.session.InteractiveFlowStatus(ctx)
		return ok
	}
	if check() {
		return nil
	}

	fileStore, isFile := a.store.(*store.FileStore)
	if !isFile {
		return pollForCompletion(ctx, check)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return pollForCompletion(ctx, check)
	}
	defer watcher.Close()

	// Watch the directory: the store replaces the file atomically, so
	// the file's own watch would be lost on the first write.
	if err := watcher.Add(filepath.Dir(fileStore.Path())); err != nil {
		return pollForCompletion(ctx, check)
	}
	if check() {
		return nil
	}

	for {
		select {
		case <-watcher.Events:
			if check() {
				return nil
			}
		case err := <-watcher.Errors:
			if err != nil {
				return pollForCompletion(ctx, check)
			}
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for the flow to complete: %w", ctx.Err())
		}
	}
}

func pollForCompletion(ctx context.Context, check func() bool) error {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if check() {
				return nil
			}
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for the flow to complete: %w", ctx.Err())
		}
	}
}

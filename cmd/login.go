package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"gdconnect/internal/bridge"
	"gdconnect/internal/session"
)

// Login-specific flags
var (
	loginNoBrowser bool
	loginPush      bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login [account-email]",
	Short: "Authenticate an account interactively",
	Long: `Authenticate an account against the identity provider using the
authorization-code flow with PKCE.

A temporary loopback listener receives the browser redirect, the
authorization code is exchanged for tokens, and the token record is
persisted for later commands.

Examples:
  gdconnect login                             # Login as the current account
  gdconnect login gasbeacon.1@cosys-demo.de   # Login as a specific account
  gdconnect login --push                      # Push the refresh token after login
  gdconnect login --no-browser                # Print the URL instead of opening a browser`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	loginCmd.Flags().BoolVar(&loginPush, "push", false, "Push the refresh token to the backend once the exchange completes")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var nav session.Navigator
	if loginNoBrowser {
		nav = session.NavigateFunc(func(url string) error {
			fmt.Printf("Open this URL in your browser:\n\n  %s\n\n", url)
			return nil
		})
	}

	a, err := newApp(nav)
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.resolveAccount(ctx, args)
	if err != nil {
		return err
	}

	if loginPush {
		if err := a.session.ScheduleTokenPush(ctx); err != nil {
			return err
		}
	}

	br := bridge.New()
	listener := bridge.NewListener(br, a.cfg.CallbackPort)
	if _, err := listener.Start(ctx); err != nil {
		return fmt.Errorf("failed to start redirect listener on port %d: %w", a.cfg.CallbackPort, err)
	}
	defer listener.Stop()

	uiPrintf("Authenticating as %s (%s)\n", account.Name, account.Email)
	if _, err := a.session.AcquireTokenInteractive(ctx, account); err != nil {
		return err
	}

	var sp *spinner.Spinner
	if !quiet && !loginNoBrowser {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " Waiting for authorization in the browser..."
		sp.Start()
	}
	resp, err := listener.Wait(ctx)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return fmt.Errorf("no authorization response received: %w", err)
	}

	if err := a.session.HandleAuthResponse(ctx, resp); err != nil {
		return err
	}

	uiPrintf("Authenticated as %s\n", account.Email)
	return nil
}

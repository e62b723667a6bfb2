package cmd

import (
	"github.com/spf13/cobra"
)

// Token-specific flags
var tokenPushForce bool

// tokenCmd represents the token command group
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the cached token record",
	Long: `Manage the cached token record for the stored account.

Examples:
  gdconnect token refresh          # Obtain a fresh token set
  gdconnect token push             # Push the refresh token to the backend
  gdconnect token push --force     # Push even if unchanged
  gdconnect token pull             # Fetch the refresh token from the backend`,
}

// tokenRefreshCmd represents the token refresh command
var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Obtain a fresh token set with the cached refresh token",
	RunE:  runTokenRefresh,
}

// tokenPushCmd represents the token push command
var tokenPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the cached refresh token to the backend relay",
	RunE:  runTokenPush,
}

// tokenPullCmd represents the token pull command
var tokenPullCmd = &cobra.Command{
	Use:   "pull [account-email]",
	Short: "Fetch an account's refresh token from the backend relay",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokenPull,
}

func init() {
	tokenPushCmd.Flags().BoolVar(&tokenPushForce, "force", false, "Push even if the record is unchanged")
	tokenCmd.AddCommand(tokenRefreshCmd)
	tokenCmd.AddCommand(tokenPushCmd)
	tokenCmd.AddCommand(tokenPullCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.restoreOrFail(ctx); err != nil {
		return err
	}

	account := a.session.CurrentAccount()
	if err := a.session.RefreshTokens(ctx, account); err != nil {
		return err
	}
	if err := a.session.PersistTokens(ctx, account); err != nil {
		return err
	}

	uiPrintf("Refreshed tokens for %s\n", account.Email)
	return nil
}

func runTokenPush(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.restoreOrFail(ctx); err != nil {
		return err
	}

	account := a.session.CurrentAccount()
	if err := a.session.PushRefreshToken(ctx, account, tokenPushForce); err != nil {
		return err
	}
	if err := a.session.PersistTokens(ctx, account); err != nil {
		return err
	}

	uiPrintf("Pushed refresh token for %s\n", account.Email)
	return nil
}

func runTokenPull(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.resolveAccount(ctx, args)
	if err != nil {
		return err
	}

	if err := a.session.PullRefreshToken(ctx, account); err != nil {
		return err
	}
	if err := a.session.PersistTokens(ctx, account); err != nil {
		return err
	}

	uiPrintf("Pulled refresh token for %s\n", account.Email)
	return nil
}

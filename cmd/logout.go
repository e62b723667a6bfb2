package cmd

import (
	"github.com/spf13/cobra"
)

// Logout-specific flags
var logoutClear bool

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Terminate the identity provider session",
	Long: `Navigate to the identity provider's logout endpoint to terminate its
session cookie.

With --clear, the local durable store is wiped as well, removing cached
tokens, flow flags, and the stored account identity.`,
	RunE: runLogout,
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutClear, "clear", false, "Also clear the local durable store")
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Logout(ctx); err != nil {
		return err
	}

	if logoutClear {
		keys, err := a.store.Keys(ctx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := a.store.Delete(ctx, key); err != nil {
				return err
			}
		}
		uiPrintln("Local state cleared.")
	}

	uiPrintln("Logged out.")
	return nil
}

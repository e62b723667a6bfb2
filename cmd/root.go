package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gdconnect/internal/session"
	"gdconnect/pkg/logging"
)

// Exit codes for CLI commands.
// These follow common conventions for scripting and automation.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

// Global flags
var (
	configPath string
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command for the gdconnect application.
var rootCmd = &cobra.Command{
	Use:   "gdconnect",
	Short: "Connect gas-detection accounts to their cloud backend",
	Long: `gdconnect authenticates device accounts against the identity provider
using the OAuth2 authorization-code flow with PKCE, relays the resulting
refresh tokens to the backend, and registers devices with the asset
registry.

The interactive flow crosses a browser redirect: gdconnect persists
everything the flow needs before handing off, so a later invocation can
pick up and finish the exchange.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gdconnect version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code based on the error type, providing
// semantic exit codes for scripting.
func getExitCode(err error) int {
	if errors.Is(err, session.ErrNoCachedToken) || errors.Is(err, session.ErrNoAccount) {
		return ExitCodeAuthRequired
	}
	if errors.Is(err, session.ErrAuthorizationFailed) ||
		errors.Is(err, session.ErrStateMismatch) ||
		errors.Is(err, session.ErrNoPendingFlow) {
		return ExitCodeAuthFailed
	}
	return ExitCodeError
}

// uiPrintln prints user-facing output unless --quiet is set.
func uiPrintln(args ...interface{}) {
	if !quiet {
		fmt.Println(args...)
	}
}

// uiPrintf prints formatted user-facing output unless --quiet is set.
func uiPrintf(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format, args...)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $HOME/.config/gdconnect/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

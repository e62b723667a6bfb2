package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gdconnect/internal/session"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion(testVersion)
	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "gdconnect" {
		t.Errorf("Expected Use to be 'gdconnect', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestGetExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.New("some failure"), ExitCodeError},
		{session.ErrNoCachedToken, ExitCodeAuthRequired},
		{fmt.Errorf("wrapped: %w", session.ErrNoCachedToken), ExitCodeAuthRequired},
		{session.ErrNoAccount, ExitCodeAuthRequired},
		{session.ErrAuthorizationFailed, ExitCodeAuthFailed},
		{fmt.Errorf("redirect: %w", session.ErrStateMismatch), ExitCodeAuthFailed},
		{session.ErrNoPendingFlow, ExitCodeAuthFailed},
	}

	for _, tc := range cases {
		if got := getExitCode(tc.err); got != tc.want {
			t.Errorf("getExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestVersionCommandOutput(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()
	rootCmd.Version = "9.9.9-test"

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	if !strings.Contains(buf.String(), "gdconnect version 9.9.9-test") {
		t.Errorf("Unexpected version output: %q", buf.String())
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"login", "logout", "resume", "status", "accounts", "token", "device", "version"}
	registered := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		registered[sub.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

package session

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Navigator performs the full-page navigations of the flow: sending the
// user to the authorization endpoint and to the logout endpoint. In the
// CLI this opens the default browser; tests substitute a recorder.
type Navigator interface {
	Navigate(url string) error
}

// NavigateFunc adapts a function to the Navigator interface.
type NavigateFunc func(url string) error

func (f NavigateFunc) Navigate(url string) error { return f(url) }

// BrowserNavigator opens URLs in the default web browser. It supports
// Linux, macOS, and Windows.
type BrowserNavigator struct{}

func (BrowserNavigator) Navigate(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	// Start without waiting; the browser keeps running on its own.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

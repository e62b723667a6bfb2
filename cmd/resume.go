package cmd

import (
	"github.com/spf13/cobra"
)

// resumeCmd represents the resume command
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Finish a pending token exchange",
	Long: `Finish a token exchange that was interrupted by the browser redirect.

The interactive flow persists the authorization code and PKCE verifier
before handing off to the browser; if the process that started the flow
is gone, resume picks the exchange up from the durable store.`,
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	resumed, err := a.session.Resume(cmd.Context())
	if err != nil {
		return err
	}
	if !resumed {
		uiPrintln("Nothing to resume.")
		return nil
	}

	uiPrintf("Exchange completed for %s\n", a.session.CurrentAccount().Email)
	return nil
}

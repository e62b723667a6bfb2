package cmd

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"gdconnect/internal/session"
)

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the account roster",
	Long: `List the fixed account roster with each account's id, email, and the
device it registers.`,
	RunE: runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Email", "Device", "Sensors"})

	for _, account := range session.DefaultAccounts() {
		deviceType, sensors := "", ""
		if account.Device != nil {
			deviceType = account.Device.Type
			sensors = strings.Join(account.Device.Sensors, ", ")
		}
		t.AppendRow(table.Row{account.ID, account.Name, account.Email, deviceType, sensors})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

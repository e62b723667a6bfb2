package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gdconnect/internal/relay"
)

// Register-specific flags
var (
	deviceType    string
	deviceAssetID string
	deviceSensors []string
)

// deviceCmd represents the device command group
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage device registrations",
}

// deviceRegisterCmd represents the device register command
var deviceRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a device with the asset registry",
	Long: `Register a device with the asset registry using the cached ID token as
the bearer credential.

Without flags, the stored account's own device is registered.

Examples:
  gdconnect device register
  gdconnect device register --type pac --asset-id GasBeacon7 --sensor CH4`,
	RunE: runDeviceRegister,
}

func init() {
	deviceRegisterCmd.Flags().StringVar(&deviceType, "type", "", "Device type")
	deviceRegisterCmd.Flags().StringVar(&deviceAssetID, "asset-id", "", "Asset identifier")
	deviceRegisterCmd.Flags().StringSliceVar(&deviceSensors, "sensor", nil, "Sensor carried by the device (repeatable)")
	deviceCmd.AddCommand(deviceRegisterCmd)
	rootCmd.AddCommand(deviceCmd)
}

func runDeviceRegister(cmd *cobra.Command, args []string) error {
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
	device := relay.Device{Type: deviceType, AssetID: deviceAssetID, Sensors: deviceSensors}
	if device.AssetID == "" {
		if account.Device == nil {
			return fmt.Errorf("account %s has no device and no --asset-id was given", account.Email)
		}
		device = *account.Device
	}

	if err := a.session.RegisterDevice(ctx, device); err != nil {
		return err
	}
	if err := a.session.PersistTokens(ctx, account); err != nil {
		return err
	}

	uiPrintf("Registered %s (%s, sensors: %s)\n", device.AssetID, device.Type, strings.Join(device.Sensors, ", "))
	return nil
}

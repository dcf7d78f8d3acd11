package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var registerName string

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage trusted devices",
	Long:  `Lists and manages the devices the server trusts.`,
	RunE:  runDevicesList,
}

var devicesRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register this device as trusted",
	RunE:  runDevicesRegister,
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <fingerprint>",
	Short: "Remove a trusted device",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesRemove,
}

func init() {
	devicesRegisterCmd.Flags().StringVarP(&registerName, "name", "n", "", "device name (default: hostname)")

	devicesCmd.AddCommand(devicesRegisterCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
	rootCmd.AddCommand(devicesCmd)
}

func runDevicesList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}

	if len(resp.Devices) == 0 {
		fmt.Println("No trusted devices")
		return nil
	}

	fingerprints := make([]string, 0, len(resp.Devices))
	for fp := range resp.Devices {
		fingerprints = append(fingerprints, fp)
	}
	sort.Slice(fingerprints, func(i, j int) bool {
		return resp.Devices[fingerprints[i]].Name < resp.Devices[fingerprints[j]].Name
	})

	table := NewTable("NAME", "FINGERPRINT", "LAST SEEN")
	for _, fp := range fingerprints {
		d := resp.Devices[fp]
		marker := ""
		if fp == cfg.Device.Fingerprint {
			marker = " (this device)"
		}
		table.Row(d.Name+marker, TruncateString(fp, 16), d.LastSeen)
	}
	table.Flush()

	return nil
}

func runDevicesRegister(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	name, fingerprint, err := deviceIdentity()
	if err != nil {
		return err
	}
	if registerName != "" {
		name = registerName
		cfg.Device.Name = registerName
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := client.RegisterDevice(ctx, fingerprint, name); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status":      "registered",
			"name":        name,
			"fingerprint": fingerprint,
		})
	} else {
		fmt.Printf("Registered as %s\n", name)
	}

	return nil
}

func runDevicesRemove(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := client.RemoveDevice(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status":      "removed",
			"fingerprint": args[0],
		})
	} else {
		fmt.Println("Device removed")
	}

	return nil
}

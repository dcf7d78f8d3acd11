package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baton-remote/baton/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, progress, volume, modes
  • Playlists - server playlists, press Enter to play
  • Devices - trusted devices on the server
  • Activity - recent playback events

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search
  Space        Play/Pause
  n            Next track
  p            Previous track
  +/-          Volume up/down
  ←/→          Seek back/forward
  s            Toggle shuffle
  r            Cycle repeat
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	rec := newReconciler(client)

	ctx, cancel := commandContext()
	err = rec.Connect(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer rec.Disconnect()

	app := tui.NewApp(client, rec, cfg.Device.Fingerprint, cfg.TUI.VolumeStep, cfg.TUI.SeekStep)
	return tui.Run(app)
}

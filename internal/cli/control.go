package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/remote"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	RunE:  runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume playback",
	RunE:  runResume,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track",
	RunE:  runNext,
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track",
	RunE:  runPrev,
}

var seekCmd = &cobra.Command{
	Use:   "seek <position>",
	Short: "Jump to a position in the current track",
	Long: `Jump to a position in the current track.

The position is in seconds, or relative with a +/- prefix:

  baton seek 90     # jump to 1:30
  baton seek +30    # forward 30 seconds
  baton seek -10    # back 10 seconds`,
	// Flag parsing would reject "-10" before RunE runs.
	DisableFlagParsing: true,
	RunE:               runSeek,
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Set or adjust volume",
	Long: `Set the playback volume (0-100) or adjust it up/down.

Examples:
  baton volume 50      # Set volume to 50%
  baton volume --up    # Increase volume by one step
  baton volume --down  # Decrease volume by one step`,
	RunE: runVolume,
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle [on|off]",
	Short: "Show or set shuffle mode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShuffle,
}

var repeatCmd = &cobra.Command{
	Use:   "repeat [off|all|one]",
	Short: "Show or set repeat mode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepeat,
}

func init() {
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "increase volume by one step")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "decrease volume by one step")

	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(seekCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(shuffleCmd)
	rootCmd.AddCommand(repeatCmd)
}

func runPause(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := client.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "paused"})
	} else {
		fmt.Println("⏸ Paused")
	}

	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := client.Play(ctx); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "playing"})
	} else {
		fmt.Println("▶ Playing")
	}

	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	track, err := client.Next(ctx)
	if err != nil {
		return fmt.Errorf("failed to skip: %w", err)
	}

	printSkipResult("skipped", track)
	return nil
}

func runPrev(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	track, err := client.Previous(ctx)
	if err != nil {
		return fmt.Errorf("failed to go back: %w", err)
	}

	printSkipResult("previous", track)
	return nil
}

func printSkipResult(status string, track *remote.TrackResponse) {
	if JSONOutput() {
		out := map[string]interface{}{"status": status}
		if track != nil && track.Name != nil {
			out["track"] = map[string]interface{}{
				"name":   *track.Name,
				"artist": deref(track.Artist),
			}
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return
	}

	icon := "⏭"
	if status == "previous" {
		icon = "⏮"
	}
	if track != nil && track.Name != nil {
		fmt.Printf("%s %s — %s\n", icon, deref(track.Artist), *track.Name)
	} else {
		fmt.Printf("%s Done\n", icon)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func runSeek(cmd *cobra.Command, args []string) error {
	// Args arrive raw because flag parsing is disabled.
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
		return cmd.Help()
	}
	if len(args) != 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	arg := args[0]
	relative := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")

	value, err := strconv.ParseFloat(strings.TrimPrefix(arg, "+"), 64)
	if err != nil {
		return fmt.Errorf("invalid position: %s", arg)
	}

	target := value
	if relative {
		snap, _, err := client.FullStatus(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current position: %w", err)
		}
		if !snap.HasTrack() {
			return fmt.Errorf("no track playing")
		}
		target = snap.Position + value
		if target < 0 {
			target = 0
		}
		if target > snap.Duration {
			target = snap.Duration
		}
	}

	if err := client.Seek(ctx, target); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status":   "seeked",
			"position": target,
		})
	} else {
		fmt.Printf("⏩ %s\n", FormatDuration(int(target)))
	}

	return nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	status, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get volume: %w", err)
	}
	current := status.Volume

	// No argument and no flags: just show the current level.
	if len(args) == 0 && !volumeUp && !volumeDown {
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]int{"volume": current})
		} else {
			fmt.Printf("🔊 Volume: %d%%\n", current)
		}
		return nil
	}

	step := cfg.TUI.VolumeStep
	if step <= 0 {
		step = 5
	}

	target := current
	switch {
	case volumeUp:
		target = current + step
	case volumeDown:
		target = current - step
	default:
		val, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume level: %s", args[0])
		}
		if val < 0 || val > 100 {
			return fmt.Errorf("volume must be between 0 and 100")
		}
		target = val
	}
	target = core.ClampVolume(target)

	if err := client.SetVolume(ctx, target); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]int{
			"volume":   target,
			"previous": current,
		})
	} else {
		fmt.Printf("🔊 Volume: %d%% (was %d%%)\n", target, current)
	}

	return nil
}

func runShuffle(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if len(args) == 0 {
		enabled, err := client.ShuffleMode(ctx)
		if err != nil {
			return fmt.Errorf("failed to get shuffle mode: %w", err)
		}
		printShuffle(enabled)
		return nil
	}

	var enabled bool
	switch args[0] {
	case "on", "true", "1":
		enabled = true
	case "off", "false", "0":
		enabled = false
	default:
		return fmt.Errorf("invalid shuffle value: %s (use on or off)", args[0])
	}

	if err := client.SetShuffle(ctx, enabled); err != nil {
		return fmt.Errorf("failed to set shuffle: %w", err)
	}
	printShuffle(enabled)
	return nil
}

func printShuffle(enabled bool) {
	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]bool{"shuffle": enabled})
		return
	}
	if enabled {
		fmt.Println("🔀 Shuffle: on")
	} else {
		fmt.Println("🔀 Shuffle: off")
	}
}

func runRepeat(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if len(args) == 0 {
		mode, err := client.RepeatMode(ctx)
		if err != nil {
			return fmt.Errorf("failed to get repeat mode: %w", err)
		}
		printRepeat(mode)
		return nil
	}

	mode := core.RepeatMode(args[0])
	switch mode {
	case core.RepeatOff, core.RepeatAll, core.RepeatOne:
	default:
		return fmt.Errorf("invalid repeat mode: %s (use off, all, or one)", args[0])
	}

	if err := client.SetRepeatMode(ctx, mode); err != nil {
		return fmt.Errorf("failed to set repeat mode: %w", err)
	}
	printRepeat(mode)
	return nil
}

func printRepeat(mode core.RepeatMode) {
	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"repeat": string(mode)})
		return
	}
	fmt.Printf("🔁 Repeat: %s\n", mode)
}

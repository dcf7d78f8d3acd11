package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/remote"
)

var statusArtwork string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current playback status",
	Long:  `Shows the current track, playback position, volume and modes.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusArtwork, "artwork", "", "save current track artwork to a file")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	snap, volume, err := client.FullStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	// Modes are best effort; status still renders without them.
	repeat, repeatErr := client.RepeatMode(ctx)
	shuffle, shuffleErr := client.ShuffleMode(ctx)

	if statusArtwork != "" {
		if err := saveArtwork(client, statusArtwork, snap); err != nil {
			return err
		}
	}

	if JSONOutput() {
		return outputStatusJSON(snap, volume, repeat, repeatErr == nil, shuffle, shuffleErr == nil)
	}
	return outputStatusText(snap, volume, repeat, repeatErr == nil, shuffle, shuffleErr == nil)
}

func saveArtwork(client *remote.Client, path string, snap *core.Snapshot) error {
	if !snap.ArtworkAvailable() {
		return fmt.Errorf("no track playing, no artwork to save")
	}

	ctx, cancel := commandContext()
	defer cancel()

	data, err := client.Artwork(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch artwork: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artwork: %w", err)
	}
	if !JSONOutput() {
		fmt.Printf("Artwork saved to %s\n", path)
	}
	return nil
}

func outputStatusJSON(snap *core.Snapshot, volume int, repeat core.RepeatMode, repeatOK bool, shuffle, shuffleOK bool) error {
	item := map[string]interface{}{
		"state":  string(snap.State),
		"volume": volume,
	}

	if snap.HasTrack() {
		item["track"] = map[string]interface{}{
			"name":   snap.Track.Name,
			"artist": snap.Track.Artist,
			"album":  snap.Track.Album,
		}
		item["position"] = snap.Position
		item["duration"] = snap.Duration
		item["progress_percent"] = snap.ProgressPercent()
	}

	if repeatOK {
		item["repeat"] = string(repeat)
	}
	if shuffleOK {
		item["shuffle"] = shuffle
	}

	return json.NewEncoder(os.Stdout).Encode(item)
}

func outputStatusText(snap *core.Snapshot, volume int, repeat core.RepeatMode, repeatOK bool, shuffle, shuffleOK bool) error {
	if !snap.HasTrack() {
		fmt.Println("No track playing")
		fmt.Printf("🔊 Volume: %d%%\n", volume)
		return nil
	}

	playIcon := "▶"
	switch snap.State {
	case core.StatePaused:
		playIcon = "⏸"
	case core.StateStopped:
		playIcon = "⏹"
	}

	fmt.Printf("%s %s\n", playIcon, snap.Track.Name)
	fmt.Printf("  %s — %s\n", snap.Track.Artist, snap.Track.Album)

	progressBar := FormatProgress(int(snap.Position), int(snap.Duration), 30)
	fmt.Printf("  %s %s / %s\n",
		progressBar,
		FormatDuration(int(snap.Position)),
		FormatDuration(int(snap.Duration)))

	modes := fmt.Sprintf("🔊 %d%%", volume)
	if repeatOK && repeat != core.RepeatOff {
		modes += fmt.Sprintf("  🔁 %s", repeat)
	}
	if shuffleOK && shuffle {
		modes += "  🔀 on"
	}
	fmt.Printf("  %s\n", modes)

	return nil
}

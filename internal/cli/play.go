package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var playTrackID string

var playCmd = &cobra.Command{
	Use:   "play [playlist]",
	Short: "Start playback",
	Long: `Start or resume playback.

With a playlist name, starts that playlist. With --track, plays a
specific track by its library ID (see 'baton search').

Examples:
  baton play                  # resume playback
  baton play "Road Trip"      # play a playlist
  baton play --track 12345    # play a track by ID`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List playlists in the library",
	RunE:  runPlaylists,
}

func init() {
	playCmd.Flags().StringVar(&playTrackID, "track", "", "track ID to play")
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(playlistsCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	switch {
	case playTrackID != "":
		track, err := client.PlayTrack(ctx, playTrackID)
		if err != nil {
			return fmt.Errorf("failed to play track: %w", err)
		}
		printSkipResult("playing", track)
		return nil

	case len(args) > 0:
		if err := client.PlayPlaylist(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to play playlist: %w", err)
		}
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
				"status":   "playing",
				"playlist": args[0],
			})
		} else {
			fmt.Printf("▶ Playing playlist: %s\n", args[0])
		}
		return nil

	default:
		return runResume(cmd, nil)
	}
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	playlists, err := client.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"playlists": playlists,
			"count":     len(playlists),
		})
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists found")
		return nil
	}

	for _, name := range playlists {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("\n%d playlists\n", len(playlists))

	return nil
}

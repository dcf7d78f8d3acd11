package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baton-remote/baton/internal/core"
)

var (
	searchType string
	searchPlay bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the music library",
	Long: `Search the library for tracks, albums or artists.

Examples:
  baton search "daft punk"
  baton search --type album discovery
  baton search --play "karma police"   # play the first match`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "track", "result type: track, album, or artist")
	searchCmd.Flags().BoolVar(&searchPlay, "play", false, "play the first result")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Accept plural forms for convenience.
	kind := core.SearchKind(strings.TrimSuffix(searchType, "s"))
	if !kind.Valid() {
		return fmt.Errorf("invalid search type: %s (use track, album, or artist)", searchType)
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	query := strings.Join(args, " ")

	results, err := client.Search(ctx, query, kind)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchPlay {
		return playFirstResult(results)
	}

	if JSONOutput() {
		out := make([]map[string]string, 0, len(results))
		for _, r := range results {
			out = append(out, map[string]string{
				"type":   string(r.Kind),
				"name":   r.Name,
				"artist": r.Artist,
				"album":  r.Album,
				"id":     r.ID,
			})
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return nil
	}

	table := NewTable("NAME", "ARTIST", "ALBUM", "ID")
	for _, r := range results {
		table.Row(
			TruncateString(r.Name, 40),
			TruncateString(r.Artist, 30),
			TruncateString(r.Album, 30),
			r.ID)
	}
	table.Flush()

	return nil
}

func playFirstResult(results []core.SearchResult) error {
	var playable *core.SearchResult
	for i := range results {
		if results[i].ID != "" {
			playable = &results[i]
			break
		}
	}
	if playable == nil {
		return fmt.Errorf("no playable result found")
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	track, err := client.PlayTrack(ctx, playable.ID)
	if err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	printSkipResult("playing", track)
	return nil
}

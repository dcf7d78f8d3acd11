package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baton-remote/baton/internal/state"
	"github.com/baton-remote/baton/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch for playback state changes and print them as they happen.

Events tracked:
  - Track changes (new song started)
  - Track completions (song finished)
  - Track skips (song skipped before completion)
  - Pause/Resume/Stop
  - Volume changes
  - Repeat and shuffle changes
  - Connection changes (push vs polling)`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	showEmoji := cfg.Tail.ShowEmoji && !tailNoEmoji
	showTimestamp := cfg.Tail.ShowTimestamp || tailTimestamp
	format := cfg.Tail.Format
	if tailFormat != "" {
		format = tailFormat
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(showEmoji),
		tail.WithTimestamp(showTimestamp),
		tail.WithTemplate(format),
	)

	// Handle Ctrl+C gracefully
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	rec := newReconciler(client)
	if err := rec.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer rec.Disconnect()

	showCurrentTrack(rec, formatter)

	watcher := tail.NewWatcher(rec.Updates())

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			fmt.Println(formatter.Format(event))

		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// showCurrentTrack prints the current song on startup so the stream
// doesn't begin silently.
func showCurrentTrack(rec *state.Reconciler, formatter *tail.Formatter) {
	snap := rec.Snapshot()
	if snap == nil || !snap.HasTrack() {
		return
	}
	u := state.Update{Snapshot: snap, Volume: rec.Volume()}
	event := tail.Event{
		Type:    tail.EventTrackChange,
		Current: &u,
	}
	fmt.Println(formatter.Format(event))
}

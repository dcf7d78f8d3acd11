package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/tui/styles"
)

// NowPlaying displays the current track and transport state.
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap *core.Snapshot, volume int, repeat core.RepeatMode, shuffle bool, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !snap.HasTrack() {
		content = styles.Muted.Render("No track playing")
	} else {
		content = n.renderTrack(snap, volume, repeat, shuffle, width-4)
	}

	panel := styles.Panel("", focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderTrack(snap *core.Snapshot, volume int, repeat core.RepeatMode, shuffle bool, width int) string {
	track := snap.Track

	icon := styles.StatusIcon(snap.State.IsPlaying())
	titleStyle := styles.Title.Width(width - 4)
	title := titleStyle.Render(track.Name)

	artist := styles.Subtitle.Render(track.Artist)
	album := styles.Dim.Render(track.Album)

	// Account for times on either side of the bar.
	progressWidth := width - 14
	if progressWidth < 10 {
		progressWidth = 10
	}
	progressBar := styles.ProgressBar(snap.ProgressPercent(), progressWidth)
	progress := fmt.Sprintf("%s %s %s",
		FormatClock(snap.Position),
		progressBar,
		FormatClock(snap.Duration))

	modes := fmt.Sprintf("🔊 %d%%", volume)
	if repeat != core.RepeatOff {
		modes += "  🔁 " + string(repeat)
	}
	if shuffle {
		modes += "  🔀 on"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
		"",
		styles.Muted.Render(modes),
	)
}

// FormatClock renders a position in seconds as m:ss.
func FormatClock(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

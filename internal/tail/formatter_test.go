package tail

import (
	"strings"
	"testing"
	"time"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/state"
)

func sampleEvent(t EventType) Event {
	return Event{
		Type:      t,
		Timestamp: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		Current: &state.Update{
			Snapshot: &core.Snapshot{
				Track:    &core.Track{Name: "Roygbiv", Artist: "Boards of Canada", Album: "Music Has the Right to Children"},
				Duration: 200,
				Position: 30,
				State:    core.StatePlaying,
			},
			Volume:     70,
			Repeat:     core.RepeatAll,
			Connection: core.PushConnected,
		},
	}
}

func TestFormatDefaultLine(t *testing.T) {
	f := NewFormatter(WithEmoji(false))

	got := f.Format(sampleEvent(EventTrackChange))
	if got != "Now playing: Boards of Canada - Roygbiv" {
		t.Errorf("line = %q", got)
	}
}

func TestFormatWithTimestampAndEmoji(t *testing.T) {
	f := NewFormatter(WithEmoji(true), WithTimestamp(true))

	got := f.Format(sampleEvent(EventVolumeChange))
	if !strings.HasPrefix(got, "15:09:26 ") {
		t.Errorf("missing timestamp prefix: %q", got)
	}
	if !strings.HasSuffix(got, "Volume: 70%") {
		t.Errorf("missing description: %q", got)
	}
}

func TestFormatCustomTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}}|{{.Artist}}|{{.Title}}|{{.Volume}}"))

	got := f.Format(sampleEvent(EventTrackChange))
	if got != "track_change|Boards of Canada|Roygbiv|70" {
		t.Errorf("template output = %q", got)
	}
}

func TestFormatInvalidTemplateFallsBack(t *testing.T) {
	f := NewFormatter(WithEmoji(false), WithTemplate("{{.Broken"))

	got := f.Format(sampleEvent(EventPause))
	if got != "Paused" {
		t.Errorf("fallback output = %q", got)
	}
}

func TestFormatRepeatAndShuffle(t *testing.T) {
	f := NewFormatter(WithEmoji(false))

	e := sampleEvent(EventRepeatChange)
	if got := f.Format(e); got != "Repeat: all" {
		t.Errorf("repeat line = %q", got)
	}

	e = sampleEvent(EventShuffleChange)
	e.Current.Shuffle = true
	if got := f.Format(e); got != "Shuffle: on" {
		t.Errorf("shuffle line = %q", got)
	}
}

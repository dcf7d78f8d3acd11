package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/baton-remote/baton/internal/core"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil {
		if e.Current.Snapshot != nil && e.Current.Snapshot.Track != nil {
			data.Title = e.Current.Snapshot.Track.Name
			data.Artist = e.Current.Snapshot.Track.Artist
			data.Album = e.Current.Snapshot.Track.Album
		}
		data.Volume = e.Current.Volume
		data.Repeat = string(e.Current.Repeat)
		data.Shuffle = e.Current.Shuffle
		data.Connection = e.Current.Connection.String()
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type       string
	Emoji      string
	Timestamp  time.Time
	Time       string
	Title      string
	Artist     string
	Album      string
	Volume     int
	Repeat     string
	Shuffle    bool
	Connection string
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if t := currentTrack(e); t != nil {
			return fmt.Sprintf("Now playing: %s - %s", t.Artist, t.Name)
		}
		return "Track changed"

	case EventTrackComplete:
		if t := previousTrack(e); t != nil {
			return fmt.Sprintf("Finished: %s - %s", t.Artist, t.Name)
		}
		return "Track completed"

	case EventTrackSkip:
		if t := previousTrack(e); t != nil {
			return fmt.Sprintf("Skipped: %s - %s", t.Artist, t.Name)
		}
		return "Track skipped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventStop:
		return "Stopped"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", e.Current.Volume)
		}
		return "Volume changed"

	case EventRepeatChange:
		if e.Current != nil {
			return fmt.Sprintf("Repeat: %s", e.Current.Repeat)
		}
		return "Repeat changed"

	case EventShuffleChange:
		if e.Current != nil {
			if e.Current.Shuffle {
				return "Shuffle: on"
			}
			return "Shuffle: off"
		}
		return "Shuffle changed"

	case EventConnectionChange:
		if e.Current != nil {
			return fmt.Sprintf("Connection: %s", e.Current.Connection)
		}
		return "Connection changed"

	default:
		return "Unknown event"
	}
}

func currentTrack(e Event) *core.Track {
	if e.Current == nil || e.Current.Snapshot == nil {
		return nil
	}
	return e.Current.Snapshot.Track
}

func previousTrack(e Event) *core.Track {
	if e.Previous == nil || e.Previous.Snapshot == nil {
		return nil
	}
	return e.Previous.Snapshot.Track
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventStop:
		return "⏹️"
	case EventVolumeChange:
		return "🔊"
	case EventRepeatChange:
		return "🔁"
	case EventShuffleChange:
		return "🔀"
	case EventConnectionChange:
		return "📡"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventStop:
		return "stop"
	case EventVolumeChange:
		return "volume_change"
	case EventRepeatChange:
		return "repeat_change"
	case EventShuffleChange:
		return "shuffle_change"
	case EventConnectionChange:
		return "connection_change"
	default:
		return "unknown"
	}
}

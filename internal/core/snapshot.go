package core

// PlayState represents the player's transport state.
type PlayState string

const (
	StatePlaying PlayState = "playing"
	StatePaused  PlayState = "paused"
	StateStopped PlayState = "stopped"
)

// ParsePlayState normalizes a server-reported state string.
// Anything unrecognized maps to stopped.
func ParsePlayState(s string) PlayState {
	switch s {
	case "playing":
		return StatePlaying
	case "paused":
		return StatePaused
	default:
		return StateStopped
	}
}

// IsPlaying returns true if the state is playing.
func (s PlayState) IsPlaying() bool {
	return s == StatePlaying
}

// Track describes the currently loaded track.
type Track struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Snapshot is the complete playback view at a point in time.
// It is replaced wholesale on every full refresh; push events may
// patch individual fields in place.
type Snapshot struct {
	Track    *Track    `json:"track"`
	Duration float64   `json:"duration"`
	Position float64   `json:"position"`
	State    PlayState `json:"state"`
}

// HasTrack returns true if there is an active track.
func (s *Snapshot) HasTrack() bool {
	return s != nil && s.Track != nil
}

// ArtworkAvailable returns true if artwork can be fetched for the
// current track.
func (s *Snapshot) ArtworkAvailable() bool {
	return s.HasTrack()
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *Snapshot) ProgressPercent() float64 {
	if s == nil || s.Duration == 0 {
		return 0
	}
	return s.Position / s.Duration * 100
}

// Clone returns a copy of the snapshot, safe to hand to observers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.Track != nil {
		t := *s.Track
		out.Track = &t
	}
	return &out
}

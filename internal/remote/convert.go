package remote

import "github.com/baton-remote/baton/internal/core"

// SnapshotFromTrack converts a /current-track payload into a snapshot.
// A null track name means nothing is loaded.
func SnapshotFromTrack(t *TrackResponse) *core.Snapshot {
	if t == nil {
		return &core.Snapshot{State: core.StateStopped}
	}

	snap := &core.Snapshot{
		Duration: t.Duration,
		Position: t.Position,
		State:    core.ParsePlayState(t.State),
	}
	if snap.Position > snap.Duration && snap.Duration > 0 {
		snap.Position = snap.Duration
	}

	if t.Name != nil {
		snap.Track = &core.Track{
			Name:   *t.Name,
			Artist: deref(t.Artist),
			Album:  deref(t.Album),
		}
	}

	return snap
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

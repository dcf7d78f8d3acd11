// Package tail turns the reconciler's state updates into a stream of
// discrete playback events suitable for logging.
package tail

import (
	"context"
	"time"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/state"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventStop
	EventVolumeChange
	EventRepeatChange
	EventShuffleChange
	EventConnectionChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *state.Update
	Current   *state.Update
}

// Watcher diffs successive state updates and emits events.
type Watcher struct {
	updates <-chan state.Update
	events  chan Event
	done    chan struct{}
}

// NewWatcher creates a watcher over a reconciler's update stream.
func NewWatcher(updates <-chan state.Update) *Watcher {
	return &Watcher{
		updates: updates,
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start consumes updates until ctx is cancelled or the stream ends.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.events)

	var prev *state.Update

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case u, ok := <-w.updates:
			if !ok {
				return nil
			}
			curr := &u

			for _, e := range DiffUpdates(prev, curr) {
				select {
				case w.events <- e:
				default:
					// Drop event if channel is full
				}
			}

			prev = curr
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// DiffUpdates compares two updates and returns detected events.
func DiffUpdates(prev, curr *state.Update) []Event {
	if curr == nil || curr.Snapshot == nil {
		return nil
	}

	now := time.Now()
	var events []Event

	// First update, nothing to diff against.
	if prev == nil || prev.Snapshot == nil {
		if curr.Snapshot.HasTrack() {
			events = append(events, Event{
				Type:      EventTrackChange,
				Timestamp: now,
				Current:   curr,
			})
		}
		return events
	}

	if trackChanged(prev.Snapshot, curr.Snapshot) {
		eventType := EventTrackChange
		if prev.Snapshot.HasTrack() {
			if wasCompleted(prev.Snapshot) {
				eventType = EventTrackComplete
			} else {
				eventType = EventTrackSkip
			}
		}
		events = append(events, Event{
			Type:      eventType,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	if e, ok := playStateEvent(prev.Snapshot.State, curr.Snapshot.State); ok {
		events = append(events, Event{
			Type:      e,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	if prev.Volume != curr.Volume {
		events = append(events, Event{
			Type:      EventVolumeChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	if prev.Repeat != curr.Repeat {
		events = append(events, Event{
			Type:      EventRepeatChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	if prev.Shuffle != curr.Shuffle {
		events = append(events, Event{
			Type:      EventShuffleChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	if prev.Connection != curr.Connection {
		events = append(events, Event{
			Type:      EventConnectionChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *core.Snapshot) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return *prev.Track != *curr.Track
}

// wasCompleted returns true if the track likely finished naturally,
// judged by how close the position got to the end.
func wasCompleted(snap *core.Snapshot) bool {
	if snap.Track == nil || snap.Duration == 0 {
		return false
	}
	return snap.Position >= snap.Duration*0.95
}

// playStateEvent maps a play state transition to an event type.
func playStateEvent(prev, curr core.PlayState) (EventType, bool) {
	if prev == curr {
		return 0, false
	}
	switch curr {
	case core.StatePlaying:
		return EventResume, true
	case core.StatePaused:
		return EventPause, true
	case core.StateStopped:
		return EventStop, true
	}
	return 0, false
}

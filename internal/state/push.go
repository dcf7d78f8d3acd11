package state

import (
	"context"

	"go.uber.org/zap"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/remote"
)

// consumePush is the single consumer of push-channel signals for one
// connection. It exits when the channel closes or the connection's
// context is cancelled.
func (r *Reconciler) consumePush(runCtx context.Context, gen uint64, signals <-chan remote.Signal) {
	for {
		select {
		case <-runCtx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			switch sig.Kind {
			case remote.SignalConnected:
				r.onPushConnected(gen)
			case remote.SignalDisconnected:
				r.onPushDisconnected(gen)
			case remote.SignalEvent:
				r.onPushEvent(runCtx, gen, sig.Event)
			}
		}
	}
}

// onPushConnected disarms the poll fallback: push is authoritative
// while connected.
func (r *Reconciler) onPushConnected(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		return
	}

	r.disarmPollLocked()
	r.connState = core.PushConnected
	r.publishLocked()
}

// onPushDisconnected re-arms the poll fallback so updates keep flowing
// while the push channel is down.
func (r *Reconciler) onPushDisconnected(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		return
	}

	r.armPollLocked()
	r.connState = core.PollingFallback
	r.publishLocked()
}

// onPushEvent dispatches a push event. Full events trigger a refresh;
// partial events patch single fields without discarding the rest of
// the snapshot.
func (r *Reconciler) onPushEvent(runCtx context.Context, gen uint64, event *remote.Event) {
	if event == nil {
		return
	}

	switch event.Type {
	case remote.EventInitialState, remote.EventFullUpdate, remote.EventTrackChanged:
		// Position resets with a new track, so a full refresh also
		// restarts the interpolator from the fetched position.
		r.refreshForEvent(runCtx, gen)

	case remote.EventStateChanged:
		r.patchState(gen, core.ParsePlayState(event.State))

	case remote.EventVolumeChanged:
		if event.Volume != nil {
			r.patchVolume(gen, *event.Volume)
		}
	}
}

func (r *Reconciler) refreshForEvent(runCtx context.Context, gen uint64) {
	r.mu.Lock()
	stale := gen != r.generation
	r.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(runCtx, refreshTimeout)
	defer cancel()
	if err := r.Refresh(ctx); err != nil {
		r.log.Debug("push-triggered refresh failed", zap.Error(err))
	}
}

// patchState updates only the play state, starting or stopping the
// interpolator to match.
func (r *Reconciler) patchState(gen uint64, state core.PlayState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		return
	}

	r.snapshot.State = state
	r.syncInterpolatorLocked()
	r.publishLocked()
}

// patchVolume updates only the volume level.
func (r *Reconciler) patchVolume(gen uint64, level int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		return
	}

	r.volume = core.ClampVolume(level)
	r.publishLocked()
}

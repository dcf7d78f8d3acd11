package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/baton-remote/baton/internal/core"
)

// syncInterpolatorLocked derives the interpolator's armed state from
// the current play state: running exactly while playing. A snapshot
// without a known duration has no position to advance.
func (r *Reconciler) syncInterpolatorLocked() {
	if r.snapshot.State == core.StatePlaying && r.snapshot.Duration > 0 {
		r.startInterpolatorLocked()
	} else {
		r.stopInterpolatorLocked()
	}
}

// startInterpolatorLocked starts the 1-second position ticker,
// replacing any prior one so at most one runs at a time.
func (r *Reconciler) startInterpolatorLocked() {
	r.stopInterpolatorLocked()
	stop := make(chan struct{})
	r.interpStop = stop
	go r.interpolate(r.generation, stop)
}

func (r *Reconciler) stopInterpolatorLocked() {
	if r.interpStop != nil {
		close(r.interpStop)
		r.interpStop = nil
	}
}

func (r *Reconciler) interpolate(gen uint64, stop chan struct{}) {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !r.advancePosition(gen, stop) {
				return
			}
		}
	}
}

// advancePosition moves the local position forward one second,
// clamping to the track duration. Returns false when ticking should
// stop: stale generation, no longer playing, or end of track reached.
func (r *Reconciler) advancePosition(gen uint64, stop chan struct{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.snapshot.State != core.StatePlaying || r.snapshot.Duration <= 0 {
		return false
	}

	r.snapshot.Position++
	if r.snapshot.Position >= r.snapshot.Duration {
		r.snapshot.Position = r.snapshot.Duration
		if r.interpStop == stop {
			r.interpStop = nil
		}
		r.publishLocked()
		return false
	}

	r.publishLocked()
	return true
}

// armPollLocked starts the fixed-interval poll fallback, replacing any
// prior instance.
func (r *Reconciler) armPollLocked() {
	r.disarmPollLocked()
	stop := make(chan struct{})
	r.pollStop = stop
	go r.poll(r.runCtx, r.generation, stop)
}

func (r *Reconciler) disarmPollLocked() {
	if r.pollStop != nil {
		close(r.pollStop)
		r.pollStop = nil
	}
}

// pollArmed reports whether the poll fallback is currently running.
func (r *Reconciler) pollArmed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pollStop != nil
}

// interpolatorArmed reports whether the position ticker is running.
func (r *Reconciler) interpolatorArmed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interpStop != nil
}

func (r *Reconciler) poll(runCtx context.Context, gen uint64, stop chan struct{}) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	if runCtx == nil {
		runCtx = context.Background()
	}

	for {
		select {
		case <-stop:
			return
		case <-runCtx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			stale := gen != r.generation
			r.mu.Unlock()
			if stale {
				return
			}

			ctx, cancel := context.WithTimeout(runCtx, refreshTimeout)
			err := r.Refresh(ctx)
			cancel()
			if err != nil {
				r.log.Debug("poll refresh failed", zap.Error(err))
			}
		}
	}
}

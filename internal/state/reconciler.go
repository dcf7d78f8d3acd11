// Package state reconciles server-reported playback state with locally
// interpolated position across the push channel and the poll fallback.
package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/remote"
)

// Server is the remote surface the reconciler drives. *remote.Client
// implements it; tests substitute a fake.
type Server interface {
	FullStatus(ctx context.Context) (*core.Snapshot, int, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) (*remote.TrackResponse, error)
	Previous(ctx context.Context) (*remote.TrackResponse, error)
	Seek(ctx context.Context, position float64) error
	SetVolume(ctx context.Context, level int) error
	RepeatMode(ctx context.Context) (core.RepeatMode, error)
	SetRepeatMode(ctx context.Context, mode core.RepeatMode) error
	ShuffleMode(ctx context.Context) (bool, error)
	SetShuffle(ctx context.Context, enabled bool) error
}

// PushDialer opens the push channel for a connection. It exists so
// tests can run the reconciler without a real WebSocket.
type PushDialer func(ctx context.Context) <-chan remote.Signal

// Update is a consistent view of everything the reconciler owns,
// published to observers after every committed change.
type Update struct {
	Snapshot   *core.Snapshot
	Volume     int
	Repeat     core.RepeatMode
	Shuffle    bool
	Connection core.ConnectionState
}

const (
	defaultPollInterval = 3 * time.Second
	defaultTickInterval = time.Second
	defaultSettleDelay  = 500 * time.Millisecond
	refreshTimeout      = 8 * time.Second
	updateBuffer        = 32
)

// Reconciler is the single owner of the playback view. Push events,
// poll ticks, interpolator ticks and user commands all funnel through
// its mutex; full refreshes replace the snapshot wholesale and partial
// push events patch single fields in place.
type Reconciler struct {
	server Server
	dial   PushDialer
	log    *zap.Logger

	pollInterval time.Duration
	tickInterval time.Duration
	settleDelay  time.Duration

	mu         sync.Mutex
	generation uint64
	snapshot   *core.Snapshot
	volume     int
	repeat     core.RepeatMode
	shuffle    bool
	connState  core.ConnectionState

	interpStop chan struct{}
	pollStop   chan struct{}

	runCtx    context.Context
	runCancel context.CancelFunc

	updates chan Update
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// WithIntervals overrides the poll, interpolator and seek-settle
// timings. Used by tests.
func WithIntervals(poll, tick, settle time.Duration) Option {
	return func(r *Reconciler) {
		r.pollInterval = poll
		r.tickInterval = tick
		r.settleDelay = settle
	}
}

// New creates a reconciler for the given server. dial may be nil for
// a connection without a push channel (poll only).
func New(server Server, dial PushDialer, opts ...Option) *Reconciler {
	r := &Reconciler{
		server:       server,
		dial:         dial,
		log:          zap.NewNop(),
		pollInterval: defaultPollInterval,
		tickInterval: defaultTickInterval,
		settleDelay:  defaultSettleDelay,
		snapshot:     &core.Snapshot{State: core.StateStopped},
		repeat:       core.RepeatOff,
		connState:    core.Disconnected,
		updates:      make(chan Update, updateBuffer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Updates returns the stream of committed state changes. Slow
// consumers lose intermediate updates, never the final one out of
// order.
func (r *Reconciler) Updates() <-chan Update {
	return r.updates
}

// Connect performs one full refresh and arms the push channel with the
// poll fallback. On failure, state is left untouched.
func (r *Reconciler) Connect(ctx context.Context) error {
	snap, volume, err := r.server.FullStatus(ctx)
	if err != nil {
		return err
	}

	// Modes are best-effort on connect; the server may predate them.
	repeat, repeatErr := r.server.RepeatMode(ctx)
	shuffle, shuffleErr := r.server.ShuffleMode(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.teardownLocked()

	r.generation++
	r.snapshot = snap
	r.volume = core.ClampVolume(volume)
	if repeatErr == nil {
		r.repeat = repeat
	}
	if shuffleErr == nil {
		r.shuffle = shuffle
	}

	r.runCtx, r.runCancel = context.WithCancel(context.Background())

	// Poll carries updates until the push channel reports connected.
	r.connState = core.PollingFallback
	r.armPollLocked()
	r.syncInterpolatorLocked()

	if r.dial != nil {
		signals := r.dial(r.runCtx)
		go r.consumePush(r.runCtx, r.generation, signals)
	}

	r.publishLocked()
	return nil
}

// Disconnect stops all timers, closes the push channel and resets the
// snapshot to its empty default. Safe to call repeatedly; in-flight
// network results from before the disconnect are discarded.
func (r *Reconciler) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connState == core.Disconnected {
		return
	}

	r.teardownLocked()
	r.generation++
	r.snapshot = &core.Snapshot{State: core.StateStopped}
	r.volume = 0
	r.connState = core.Disconnected
	r.publishLocked()
}

// teardownLocked cancels timers and the push channel for the current
// connection.
func (r *Reconciler) teardownLocked() {
	r.stopInterpolatorLocked()
	r.disarmPollLocked()
	if r.runCancel != nil {
		r.runCancel()
		r.runCancel = nil
	}
}

// Refresh fetches the full status and replaces the snapshot wholesale.
// Concurrent refreshes are safe: each commits all-or-nothing, and the
// last one to complete wins.
func (r *Reconciler) Refresh(ctx context.Context) error {
	r.mu.Lock()
	gen := r.generation
	disconnected := r.connState == core.Disconnected
	r.mu.Unlock()
	if disconnected {
		return nil
	}

	snap, volume, err := r.server.FullStatus(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A disconnect or reconnect happened while the fetch was in
	// flight; the result belongs to a dead connection.
	if gen != r.generation || r.connState == core.Disconnected {
		return nil
	}

	r.snapshot = snap
	r.volume = core.ClampVolume(volume)
	r.syncInterpolatorLocked()
	r.publishLocked()
	return nil
}

// Play resumes playback, applying the playing state optimistically.
func (r *Reconciler) Play(ctx context.Context) error {
	r.mu.Lock()
	r.snapshot.State = core.StatePlaying
	r.syncInterpolatorLocked()
	r.publishLocked()
	r.mu.Unlock()

	if err := r.server.Play(ctx); err != nil {
		// Not rolled back: the next successful refresh heals it.
		return err
	}
	return r.Refresh(ctx)
}

// Pause pauses playback, applying the paused state optimistically.
func (r *Reconciler) Pause(ctx context.Context) error {
	r.mu.Lock()
	r.snapshot.State = core.StatePaused
	r.syncInterpolatorLocked()
	r.publishLocked()
	r.mu.Unlock()

	if err := r.server.Pause(ctx); err != nil {
		return err
	}
	return r.Refresh(ctx)
}

// Next skips forward and reconciles with the reported track.
func (r *Reconciler) Next(ctx context.Context) error {
	if _, err := r.server.Next(ctx); err != nil {
		return err
	}
	return r.Refresh(ctx)
}

// Prev skips backward and reconciles with the reported track.
func (r *Reconciler) Prev(ctx context.Context) error {
	if _, err := r.server.Previous(ctx); err != nil {
		return err
	}
	return r.Refresh(ctx)
}

// SeekTo jumps to a position in the current track. The position is
// clamped, applied locally for responsive feedback, sent to the
// server, and reconciled once after a settle delay so server-side
// rounding is absorbed.
func (r *Reconciler) SeekTo(ctx context.Context, position float64) error {
	r.mu.Lock()
	if position < 0 {
		position = 0
	}
	if r.snapshot.Duration > 0 && position > r.snapshot.Duration {
		position = r.snapshot.Duration
	}
	r.snapshot.Position = position
	if r.snapshot.State == core.StatePlaying {
		r.syncInterpolatorLocked()
	}
	r.publishLocked()
	gen := r.generation
	runCtx := r.runCtx
	r.mu.Unlock()

	if err := r.server.Seek(ctx, position); err != nil {
		return err
	}

	go r.settleRefresh(runCtx, gen)
	return nil
}

// settleRefresh issues exactly one refresh after the settle delay,
// unless the connection has been torn down in the meantime.
func (r *Reconciler) settleRefresh(runCtx context.Context, gen uint64) {
	if runCtx == nil {
		runCtx = context.Background()
	}
	select {
	case <-runCtx.Done():
		return
	case <-time.After(r.settleDelay):
	}

	r.mu.Lock()
	stale := gen != r.generation
	r.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(runCtx, refreshTimeout)
	defer cancel()
	if err := r.Refresh(ctx); err != nil {
		r.log.Debug("settle refresh failed", zap.Error(err))
	}
}

// SetVolume clamps and applies the level locally, then tells the
// server. The snapshot is untouched.
func (r *Reconciler) SetVolume(ctx context.Context, level int) error {
	level = core.ClampVolume(level)

	r.mu.Lock()
	r.volume = level
	r.publishLocked()
	r.mu.Unlock()

	return r.server.SetVolume(ctx, level)
}

// ToggleShuffle flips shuffle locally and mirrors it to the server.
func (r *Reconciler) ToggleShuffle(ctx context.Context) (bool, error) {
	r.mu.Lock()
	r.shuffle = !r.shuffle
	enabled := r.shuffle
	r.publishLocked()
	r.mu.Unlock()

	return enabled, r.server.SetShuffle(ctx, enabled)
}

// CycleRepeat advances repeat off -> all -> one -> off and mirrors it
// to the server.
func (r *Reconciler) CycleRepeat(ctx context.Context) (core.RepeatMode, error) {
	r.mu.Lock()
	r.repeat = r.repeat.Next()
	mode := r.repeat
	r.publishLocked()
	r.mu.Unlock()

	return mode, r.server.SetRepeatMode(ctx, mode)
}

// Snapshot returns a copy of the current playback view.
func (r *Reconciler) Snapshot() *core.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.Clone()
}

// Volume returns the current volume level.
func (r *Reconciler) Volume() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volume
}

// Repeat returns the current repeat mode.
func (r *Reconciler) Repeat() core.RepeatMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repeat
}

// Shuffle returns whether shuffle is enabled.
func (r *Reconciler) Shuffle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shuffle
}

// ConnectionState returns how updates are currently arriving.
func (r *Reconciler) ConnectionState() core.ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connState
}

// publishLocked emits the current view to observers without blocking.
func (r *Reconciler) publishLocked() {
	u := Update{
		Snapshot:   r.snapshot.Clone(),
		Volume:     r.volume,
		Repeat:     r.repeat,
		Shuffle:    r.shuffle,
		Connection: r.connState,
	}
	select {
	case r.updates <- u:
	default:
		// Consumer lags: evict the oldest buffered update so the
		// latest committed view is always the one left behind.
		select {
		case <-r.updates:
		default:
		}
		select {
		case r.updates <- u:
		default:
		}
	}
}

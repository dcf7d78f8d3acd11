package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/remote"
)

// fakeServer implements Server with scriptable responses.
type fakeServer struct {
	mu sync.Mutex

	snapshot core.Snapshot
	track    *core.Track
	volume   int
	repeat   core.RepeatMode
	shuffle  bool

	fullStatusCalls int
	seekCalls       int
	playCalls       int
	pauseCalls      int

	playErr  error
	pauseErr error
	seekErr  error

	// statusFn overrides FullStatus entirely when set.
	statusFn func(call int) (*core.Snapshot, int, error)
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		snapshot: core.Snapshot{State: core.StateStopped},
		volume:   50,
		repeat:   core.RepeatOff,
	}
}

func (f *fakeServer) setTrack(name string, duration, position float64, state core.PlayState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.track = &core.Track{Name: name, Artist: "Artist", Album: "Album"}
	f.snapshot = core.Snapshot{Duration: duration, Position: position, State: state}
}

func (f *fakeServer) FullStatus(ctx context.Context) (*core.Snapshot, int, error) {
	f.mu.Lock()
	f.fullStatusCalls++
	call := f.fullStatusCalls
	fn := f.statusFn
	snap := f.snapshot
	snap.Track = f.track
	volume := f.volume
	f.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	return snap.Clone(), volume, nil
}

func (f *fakeServer) statusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullStatusCalls
}

func (f *fakeServer) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullStatusCalls = 0
	f.seekCalls = 0
	f.playCalls = 0
	f.pauseCalls = 0
}

func (f *fakeServer) Play(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playCalls++
	return f.playErr
}

func (f *fakeServer) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalls++
	return f.pauseErr
}

func (f *fakeServer) Next(ctx context.Context) (*remote.TrackResponse, error) {
	return nil, nil
}

func (f *fakeServer) Previous(ctx context.Context) (*remote.TrackResponse, error) {
	return nil, nil
}

func (f *fakeServer) Seek(ctx context.Context, position float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seekCalls++
	return f.seekErr
}

func (f *fakeServer) SetVolume(ctx context.Context, level int) error { return nil }

func (f *fakeServer) RepeatMode(ctx context.Context) (core.RepeatMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repeat, nil
}

func (f *fakeServer) SetRepeatMode(ctx context.Context, mode core.RepeatMode) error { return nil }

func (f *fakeServer) ShuffleMode(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shuffle, nil
}

func (f *fakeServer) SetShuffle(ctx context.Context, enabled bool) error { return nil }

// quiet intervals keep background timers out of the way unless a test
// wants them.
func newQuietReconciler(srv Server, dial PushDialer) *Reconciler {
	return New(srv, dial, WithIntervals(time.Hour, time.Hour, 10*time.Millisecond))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

// drainUpdates keeps the observer channel from filling up during a test.
func drainUpdates(r *Reconciler) {
	go func() {
		for range r.Updates() {
		}
	}()
}

func TestConnectCommitsFullState(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Harvest Moon", 200, 12, core.StatePaused)
	srv.volume = 60
	srv.repeat = core.RepeatAll
	srv.shuffle = true

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()

	snap := r.Snapshot()
	if !snap.HasTrack() || snap.Track.Name != "Harvest Moon" {
		t.Fatalf("snapshot track = %+v, want Harvest Moon", snap.Track)
	}
	if snap.Position != 12 || snap.Duration != 200 {
		t.Errorf("position/duration = %v/%v, want 12/200", snap.Position, snap.Duration)
	}
	if r.Volume() != 60 {
		t.Errorf("Volume() = %d, want 60", r.Volume())
	}
	if r.Repeat() != core.RepeatAll {
		t.Errorf("Repeat() = %v, want all", r.Repeat())
	}
	if !r.Shuffle() {
		t.Error("Shuffle() = false, want true")
	}
	if got := r.ConnectionState(); got != core.PollingFallback {
		t.Errorf("ConnectionState() = %v, want polling fallback before push connects", got)
	}
	if r.interpolatorArmed() {
		t.Error("interpolator armed while paused")
	}
}

func TestConnectFailureLeavesStateUntouched(t *testing.T) {
	srv := newFakeServer()
	srv.statusFn = func(int) (*core.Snapshot, int, error) {
		return nil, 0, errors.New("connection refused")
	}

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err == nil {
		t.Fatal("Connect() succeeded, want error")
	}

	if got := r.ConnectionState(); got != core.Disconnected {
		t.Errorf("ConnectionState() = %v, want disconnected", got)
	}
	if snap := r.Snapshot(); snap.HasTrack() {
		t.Errorf("snapshot has track after failed connect: %+v", snap.Track)
	}
	if r.pollArmed() {
		t.Error("poll armed after failed connect")
	}
}

func TestStateChangedPatchesOnlyPlayState(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Pyramid Song", 300, 45, core.StatePaused)

	signals := make(chan remote.Signal)
	dial := func(ctx context.Context) <-chan remote.Signal { return signals }

	r := newQuietReconciler(srv, dial)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	sequence := []struct {
		state       string
		wantState   core.PlayState
		wantTicking bool
	}{
		{"playing", core.StatePlaying, true},
		{"paused", core.StatePaused, false},
		{"playing", core.StatePlaying, true},
		{"stopped", core.StateStopped, false},
	}

	for _, step := range sequence {
		signals <- remote.Signal{Kind: remote.SignalEvent, Event: &remote.Event{
			Type:  remote.EventStateChanged,
			State: step.state,
		}}

		want := step
		waitFor(t, time.Second, func() bool {
			return r.Snapshot().State == want.wantState &&
				r.interpolatorArmed() == want.wantTicking
		}, fmt.Sprintf("state %q not applied or interpolator mismatched", step.state))

		// The rest of the snapshot is untouched by the patch.
		snap := r.Snapshot()
		if snap.Track == nil || snap.Track.Name != "Pyramid Song" {
			t.Fatalf("track lost during state patch: %+v", snap.Track)
		}
		if snap.Position != 45 || snap.Duration != 300 {
			t.Fatalf("position/duration changed during state patch: %v/%v", snap.Position, snap.Duration)
		}
	}
}

func TestVolumeChangedPatchesOnlyVolume(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Holland, 1945", 190, 20, core.StatePaused)

	signals := make(chan remote.Signal)
	dial := func(ctx context.Context) <-chan remote.Signal { return signals }

	r := newQuietReconciler(srv, dial)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	level := 85
	signals <- remote.Signal{Kind: remote.SignalEvent, Event: &remote.Event{
		Type:   remote.EventVolumeChanged,
		Volume: &level,
	}}

	waitFor(t, time.Second, func() bool { return r.Volume() == 85 }, "volume patch not applied")

	snap := r.Snapshot()
	if snap.Track == nil || snap.Track.Name != "Holland, 1945" || snap.Position != 20 {
		t.Errorf("snapshot touched by volume patch: %+v", snap)
	}
}

func TestTrackChangedTriggersRefresh(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Old Track", 100, 99, core.StatePlaying)

	signals := make(chan remote.Signal)
	dial := func(ctx context.Context) <-chan remote.Signal { return signals }

	r := newQuietReconciler(srv, dial)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	srv.setTrack("New Track", 240, 0, core.StatePlaying)
	before := srv.statusCalls()

	signals <- remote.Signal{Kind: remote.SignalEvent, Event: &remote.Event{
		Type: remote.EventTrackChanged,
	}}

	waitFor(t, time.Second, func() bool {
		snap := r.Snapshot()
		return snap.HasTrack() && snap.Track.Name == "New Track" && snap.Position == 0
	}, "track_changed did not refresh the snapshot")

	if srv.statusCalls() != before+1 {
		t.Errorf("refresh calls = %d, want %d", srv.statusCalls(), before+1)
	}
	if !r.interpolatorArmed() {
		t.Error("interpolator not restarted after track change")
	}
}

func TestInterpolatorClampsAtDuration(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Closer", 200, 199, core.StatePlaying)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	r.mu.Lock()
	gen := r.generation
	stop := r.interpStop
	r.mu.Unlock()

	// One tick from 199 lands exactly on the duration and stops.
	if cont := r.advancePosition(gen, stop); cont {
		t.Error("advancePosition continued past the end of the track")
	}

	snap := r.Snapshot()
	if snap.Position != 200 {
		t.Errorf("position = %v, want exactly 200", snap.Position)
	}
	if r.interpolatorArmed() {
		t.Error("interpolator still armed after reaching duration")
	}

	// Further ticks from a stale generation or stopped ticker change nothing.
	if cont := r.advancePosition(gen, stop); cont {
		t.Error("advancePosition resumed after clamping")
	}
	if snap := r.Snapshot(); snap.Position != 200 {
		t.Errorf("position moved past duration: %v", snap.Position)
	}
}

func TestInterpolatorAdvancesOncePerTick(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Avril 14th", 120, 10, core.StatePlaying)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	r.mu.Lock()
	gen := r.generation
	stop := r.interpStop
	r.mu.Unlock()

	for i := 0; i < 3; i++ {
		if cont := r.advancePosition(gen, stop); !cont {
			t.Fatalf("tick %d stopped early", i)
		}
	}

	if snap := r.Snapshot(); snap.Position != 13 {
		t.Errorf("position = %v, want 13 after three ticks", snap.Position)
	}
}

func TestPollArmedExactlyWhilePushDown(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Svefn-g-englar", 600, 0, core.StatePaused)

	signals := make(chan remote.Signal)
	dial := func(ctx context.Context) <-chan remote.Signal { return signals }

	r := newQuietReconciler(srv, dial)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	if !r.pollArmed() {
		t.Fatal("poll not armed before push connects")
	}

	signals <- remote.Signal{Kind: remote.SignalConnected}
	waitFor(t, time.Second, func() bool {
		return !r.pollArmed() && r.ConnectionState() == core.PushConnected
	}, "poll still armed after push connected")

	signals <- remote.Signal{Kind: remote.SignalDisconnected}
	waitFor(t, time.Second, func() bool {
		return r.pollArmed() && r.ConnectionState() == core.PollingFallback
	}, "poll not re-armed after push dropped")

	signals <- remote.Signal{Kind: remote.SignalConnected}
	waitFor(t, time.Second, func() bool {
		return !r.pollArmed() && r.ConnectionState() == core.PushConnected
	}, "poll still armed after push reconnected")
}

func TestSeekAppliesImmediatelyThenSettles(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Re: Stacks", 180, 120, core.StatePaused)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)
	srv.resetCalls()

	if err := r.SeekTo(context.Background(), 50); err != nil {
		t.Fatalf("SeekTo() error: %v", err)
	}

	// Applied locally before any reconciliation round trip.
	if snap := r.Snapshot(); snap.Position != 50 {
		t.Fatalf("position = %v immediately after seek, want 50", snap.Position)
	}

	waitFor(t, time.Second, func() bool { return srv.statusCalls() == 1 },
		"settle refresh not issued")

	// Exactly one refresh, not one per timer leak.
	time.Sleep(50 * time.Millisecond)
	if got := srv.statusCalls(); got != 1 {
		t.Errorf("refresh calls after settle = %d, want exactly 1", got)
	}
}

func TestSeekClampsToTrackBounds(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Teardrop", 180, 30, core.StatePaused)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	if err := r.SeekTo(context.Background(), 500); err != nil {
		t.Fatalf("SeekTo() error: %v", err)
	}
	if snap := r.Snapshot(); snap.Position != 180 {
		t.Errorf("position = %v, want clamp to duration 180", snap.Position)
	}

	if err := r.SeekTo(context.Background(), -10); err != nil {
		t.Fatalf("SeekTo() error: %v", err)
	}
	if snap := r.Snapshot(); snap.Position != 0 {
		t.Errorf("position = %v, want clamp to 0", snap.Position)
	}
}

func TestSetVolumeClampsAndLeavesSnapshotAlone(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Roygbiv", 150, 60, core.StatePaused)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	before := r.Snapshot()

	if err := r.SetVolume(context.Background(), 150); err != nil {
		t.Fatalf("SetVolume() error: %v", err)
	}
	if r.Volume() != 100 {
		t.Errorf("Volume() = %d, want clamp to 100", r.Volume())
	}

	if err := r.SetVolume(context.Background(), 75); err != nil {
		t.Fatalf("SetVolume() error: %v", err)
	}
	if r.Volume() != 75 {
		t.Errorf("Volume() = %d, want 75", r.Volume())
	}

	after := r.Snapshot()
	if after.Position != before.Position || after.State != before.State ||
		after.Track.Name != before.Track.Name {
		t.Errorf("snapshot changed by volume set: before=%+v after=%+v", before, after)
	}
}

func TestCycleRepeatVisitsAllThenOne(t *testing.T) {
	srv := newFakeServer()
	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	want := []core.RepeatMode{core.RepeatAll, core.RepeatOne, core.RepeatOff}
	for i, expected := range want {
		mode, err := r.CycleRepeat(context.Background())
		if err != nil {
			t.Fatalf("CycleRepeat() #%d error: %v", i, err)
		}
		if mode != expected {
			t.Fatalf("CycleRepeat() #%d = %v, want %v", i, mode, expected)
		}
	}
}

func TestPlayFailureKeepsOptimisticState(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Everything In Its Right Place", 250, 0, core.StatePaused)
	srv.playErr = errors.New("network down")

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)
	srv.resetCalls()

	if err := r.Play(context.Background()); err == nil {
		t.Fatal("Play() succeeded, want transport error")
	}

	// Optimistic state is not rolled back; the next refresh heals it.
	if snap := r.Snapshot(); snap.State != core.StatePlaying {
		t.Errorf("state = %v after failed play, want optimistic playing", snap.State)
	}
	if srv.statusCalls() != 0 {
		t.Errorf("refresh issued after failed command: %d calls", srv.statusCalls())
	}
}

func TestConcurrentRefreshesCommitAllOrNothing(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Initial", 100, 0, core.StatePaused)

	alpha := &core.Snapshot{
		Track:    &core.Track{Name: "Alpha", Artist: "A", Album: "AA"},
		Duration: 100, Position: 10, State: core.StatePaused,
	}
	beta := &core.Snapshot{
		Track:    &core.Track{Name: "Beta", Artist: "B", Album: "BB"},
		Duration: 200, Position: 20, State: core.StatePlaying,
	}

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	srv.mu.Lock()
	srv.statusFn = func(call int) (*core.Snapshot, int, error) {
		if call%2 == 0 {
			return alpha.Clone(), 10, nil
		}
		return beta.Clone(), 20, nil
	}
	srv.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Refresh(context.Background())
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	volume := r.Volume()

	// Whichever refresh won, the snapshot and volume must belong to
	// the same fetch; mixed fields mean a torn write.
	switch snap.Track.Name {
	case "Alpha":
		if snap.Duration != 100 || snap.Position != 10 || snap.State != core.StatePaused || volume != 10 {
			t.Errorf("mixed snapshot: %+v volume=%d", snap, volume)
		}
	case "Beta":
		if snap.Duration != 200 || snap.Position != 20 || snap.State != core.StatePlaying || volume != 20 {
			t.Errorf("mixed snapshot: %+v volume=%d", snap, volume)
		}
	default:
		t.Errorf("unexpected track %q", snap.Track.Name)
	}
}

func TestDisconnectDiscardsInFlightRefresh(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Ageispolis", 300, 100, core.StatePlaying)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	drainUpdates(r)

	started := make(chan struct{})
	release := make(chan struct{})
	srv.mu.Lock()
	srv.statusFn = func(int) (*core.Snapshot, int, error) {
		close(started)
		<-release
		return &core.Snapshot{
			Track:    &core.Track{Name: "Stale"},
			Duration: 300, Position: 150, State: core.StatePlaying,
		}, 90, nil
	}
	srv.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- r.Refresh(context.Background()) }()

	// The fetch is in flight before the disconnect happens.
	<-started
	r.Disconnect()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	// The stale result must not resurrect the connection's state.
	if snap := r.Snapshot(); snap.HasTrack() {
		t.Errorf("stale refresh applied after disconnect: %+v", snap.Track)
	}
	if r.Volume() != 0 {
		t.Errorf("Volume() = %d after disconnect, want 0", r.Volume())
	}
	if r.ConnectionState() != core.Disconnected {
		t.Errorf("ConnectionState() = %v, want disconnected", r.ConnectionState())
	}
}

func TestInterpolatorStaysIdleWithoutDuration(t *testing.T) {
	srv := newFakeServer()
	srv.mu.Lock()
	srv.track = &core.Track{Name: "Live Stream", Artist: "Artist", Album: "Album"}
	srv.snapshot = core.Snapshot{Duration: 0, Position: 0, State: core.StatePlaying}
	srv.mu.Unlock()

	r := New(srv, nil, WithIntervals(time.Hour, 5*time.Millisecond, time.Hour))
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	drainUpdates(r)
	defer r.Disconnect()

	if r.interpolatorArmed() {
		t.Error("interpolator armed for a zero-duration snapshot")
	}

	// Even across many tick intervals the position must not move.
	time.Sleep(50 * time.Millisecond)
	if pos := r.Snapshot().Position; pos != 0 {
		t.Errorf("position advanced to %v without a duration", pos)
	}
}

func TestSlowConsumerKeepsFinalUpdate(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Xtal", 300, 0, core.StatePaused)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}

	// Overflow the update buffer without consuming anything.
	for level := 1; level <= updateBuffer+8; level++ {
		if err := r.SetVolume(context.Background(), level); err != nil {
			t.Fatalf("SetVolume(%d) error: %v", level, err)
		}
	}

	var last Update
	for {
		select {
		case u := <-r.Updates():
			last = u
			continue
		default:
		}
		break
	}

	if last.Volume != updateBuffer+8 {
		t.Errorf("last buffered update has volume %d, want %d", last.Volume, updateBuffer+8)
	}
}

func TestRefreshAfterDisconnectIsNoOp(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Rhubarb", 300, 100, core.StatePlaying)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	drainUpdates(r)

	r.Disconnect()
	srv.resetCalls()

	// A refresh issued on a disconnected reconciler never hits the
	// server and never resurrects state.
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if srv.statusCalls() != 0 {
		t.Errorf("FullStatus called %d times after disconnect, want 0", srv.statusCalls())
	}
	if snap := r.Snapshot(); snap.HasTrack() {
		t.Errorf("refresh applied after disconnect: %+v", snap.Track)
	}
	if r.Volume() != 0 {
		t.Errorf("Volume() = %d after disconnect, want 0", r.Volume())
	}
	if r.interpolatorArmed() {
		t.Error("interpolator armed after disconnect")
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Windowlicker", 360, 0, core.StatePlaying)

	r := newQuietReconciler(srv, nil)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	drainUpdates(r)

	r.Disconnect()
	r.Disconnect()
	r.Disconnect()

	if r.pollArmed() || r.interpolatorArmed() {
		t.Error("timers still armed after disconnect")
	}
	if r.ConnectionState() != core.Disconnected {
		t.Errorf("ConnectionState() = %v, want disconnected", r.ConnectionState())
	}
}

func TestStaleSignalsIgnoredAfterReconnect(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("Glosoli", 400, 0, core.StatePaused)

	signals := make(chan remote.Signal, 4)
	dial := func(ctx context.Context) <-chan remote.Signal { return signals }

	r := newQuietReconciler(srv, dial)
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	drainUpdates(r)

	r.mu.Lock()
	oldGen := r.generation
	r.mu.Unlock()

	r.Disconnect()
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect error: %v", err)
	}
	defer r.Disconnect()

	// A state patch carrying the old connection's generation must be
	// dropped, not applied to the new connection.
	r.patchState(oldGen, core.StatePlaying)

	if snap := r.Snapshot(); snap.State != core.StatePaused {
		t.Errorf("stale-generation patch applied: state = %v", snap.State)
	}
	if r.interpolatorArmed() {
		t.Error("stale-generation patch armed the interpolator")
	}
}

func TestPollTickRefreshes(t *testing.T) {
	srv := newFakeServer()
	srv.setTrack("One More Time", 320, 5, core.StatePaused)

	r := New(srv, nil, WithIntervals(10*time.Millisecond, time.Hour, time.Hour))
	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer r.Disconnect()
	drainUpdates(r)

	srv.setTrack("Aerodynamic", 210, 0, core.StatePaused)

	waitFor(t, time.Second, func() bool {
		snap := r.Snapshot()
		return snap.HasTrack() && snap.Track.Name == "Aerodynamic"
	}, "poll tick never refreshed the snapshot")
}

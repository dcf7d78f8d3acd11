package remote

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "test-token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNewNormalizesAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
		wantErr bool
	}{
		{address: "192.168.1.20:5005", want: "http://192.168.1.20:5005"},
		{address: "studio.local:5005", want: "http://studio.local:5005"},
		{address: "studio.local", want: "http://studio.local"},
		{address: "http://studio.local:5005/", want: "http://studio.local:5005"},
		{address: "https://studio.local:5005", want: "https://studio.local:5005"},
		{address: "", wantErr: true},
	}

	for _, tt := range tests {
		c, err := New(tt.address, "")
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q): expected error", tt.address)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q): %v", tt.address, err)
			continue
		}
		if c.BaseURL() != tt.want {
			t.Errorf("New(%q) base URL = %q, want %q", tt.address, c.BaseURL(), tt.want)
		}
	}
}

func TestBearerTokenSent(t *testing.T) {
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"state":"playing","volume":40}`))
	}))

	if _, err := c.Status(context.Background()); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized"}`))
	}))

	_, err := c.Status(context.Background())
	if !stderrors.Is(err, errors.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestServerErrorCarriesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Playlist not found"}`))
	}))

	err := c.PlayPlaylist(context.Background(), "Road Trip")
	srvErr, ok := errors.IsServerError(err)
	if !ok {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if srvErr.Status != http.StatusNotFound || srvErr.Message != "Playlist not found" {
		t.Errorf("server error = %+v", srvErr)
	}
}

func TestMalformedBodyMapsToSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"state": not json`))
	}))

	_, err := c.Status(context.Background())
	if !stderrors.Is(err, errors.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestUnreachableMapsToSentinel(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := c.Status(context.Background())
	if !stderrors.Is(err, errors.ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}

func TestTimeoutMapsToSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	WithTimeout(20 * time.Millisecond)(c)

	_, err := c.Status(context.Background())
	if !stderrors.Is(err, errors.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestFullStatusPrefersStatusPlayState(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/current-track":
			w.Write([]byte(`{"name":"Karma Police","artist":"Radiohead","album":"OK Computer","duration":263.0,"position":42.5,"state":"playing"}`))
		case "/status":
			w.Write([]byte(`{"state":"paused","volume":65}`))
		default:
			http.NotFound(w, r)
		}
	}))

	snap, volume, err := c.FullStatus(context.Background())
	if err != nil {
		t.Fatalf("FullStatus: %v", err)
	}
	if snap.State != core.StatePaused {
		t.Errorf("state = %q, want paused", snap.State)
	}
	if !snap.HasTrack() || snap.Track.Name != "Karma Police" {
		t.Errorf("track = %+v", snap.Track)
	}
	if snap.Position != 42.5 || snap.Duration != 263.0 {
		t.Errorf("position/duration = %v/%v", snap.Position, snap.Duration)
	}
	if volume != 65 {
		t.Errorf("volume = %d", volume)
	}
}

func TestFullStatusWithNoTrack(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/current-track":
			w.Write([]byte(`{"name":null,"artist":null,"album":null,"duration":0,"position":0,"state":"stopped"}`))
		case "/status":
			w.Write([]byte(`{"state":"stopped","volume":30}`))
		default:
			http.NotFound(w, r)
		}
	}))

	snap, _, err := c.FullStatus(context.Background())
	if err != nil {
		t.Fatalf("FullStatus: %v", err)
	}
	if snap.HasTrack() {
		t.Errorf("expected no track, got %+v", snap.Track)
	}
	if snap.State != core.StateStopped {
		t.Errorf("state = %q", snap.State)
	}
}

func TestSearchSendsQueryParams(t *testing.T) {
	var gotQuery, gotType string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotType = r.URL.Query().Get("type")
		w.Write([]byte(`{"query":"daft","type":"album","results":[{"type":"album","name":"Discovery","artist":"Daft Punk"}],"count":1}`))
	}))

	results, err := c.Search(context.Background(), "daft", core.SearchAlbums)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "daft" || gotType != "album" {
		t.Errorf("params = %q/%q", gotQuery, gotType)
	}
	if len(results) != 1 || results[0].Name != "Discovery" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	if _, err := c.Search(context.Background(), "", core.SearchTracks); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestPlayPlaylistEscapesName(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"action":"play_playlist","success":true}`))
	}))

	if err := c.PlayPlaylist(context.Background(), "Road Trip / 2024"); err != nil {
		t.Fatalf("PlayPlaylist: %v", err)
	}
	if gotPath != "/playlist/Road%20Trip%20%2F%202024/play" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestSetVolumeClampsBody(t *testing.T) {
	var gotBody string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Write([]byte(`{"action":"volume","success":true}`))
	}))

	if err := c.SetVolume(context.Background(), 150); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if gotBody != `{"level":100}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestRemoveDeviceUsesDelete(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"success":true}`))
	}))

	if err := c.RemoveDevice(context.Background(), "abc123"); err != nil {
		t.Fatalf("RemoveDevice: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/device/remove/abc123" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestWsEndpoint(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{base: "http://studio.local:5005", want: "ws://studio.local:5005/events"},
		{base: "https://studio.local:5005", want: "wss://studio.local:5005/events"},
	}
	for _, tt := range tests {
		if got := wsEndpoint(tt.base); got != tt.want {
			t.Errorf("wsEndpoint(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

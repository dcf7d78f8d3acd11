package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/baton-remote/baton/internal/core"
)

// Ping checks server liveness. It never sends credentials.
func (c *Client) Ping(ctx context.Context) error {
	var resp PingResponse
	return c.Get(ctx, "/ping", &resp)
}

// Status returns the play state and volume.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.Get(ctx, "/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentTrack returns the currently loaded track, if any.
func (c *Client) CurrentTrack(ctx context.Context) (*TrackResponse, error) {
	var resp TrackResponse
	if err := c.Get(ctx, "/current-track", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FullStatus fetches the current track and volume in one call pair and
// returns them as a consistent snapshot.
func (c *Client) FullStatus(ctx context.Context) (*core.Snapshot, int, error) {
	track, err := c.CurrentTrack(ctx)
	if err != nil {
		return nil, 0, err
	}
	status, err := c.Status(ctx)
	if err != nil {
		return nil, 0, err
	}
	snap := SnapshotFromTrack(track)
	// /status is authoritative for play state; /current-track lags
	// behind it when the player has just stopped.
	snap.State = core.ParsePlayState(status.State)
	return snap, status.Volume, nil
}

// Play starts or resumes playback.
func (c *Client) Play(ctx context.Context) error {
	return c.Post(ctx, "/play", nil, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.Post(ctx, "/pause", nil, nil)
}

// Next skips to the next track and returns it.
func (c *Client) Next(ctx context.Context) (*TrackResponse, error) {
	var resp CommandResponse
	if err := c.Post(ctx, "/next", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Track, nil
}

// Previous goes back to the previous track and returns it.
func (c *Client) Previous(ctx context.Context) (*TrackResponse, error) {
	var resp CommandResponse
	if err := c.Post(ctx, "/previous", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Track, nil
}

// SetVolume sets the volume level (clamped to 0-100 server side too).
func (c *Client) SetVolume(ctx context.Context, level int) error {
	body := map[string]int{"level": core.ClampVolume(level)}
	return c.Post(ctx, "/volume", body, nil)
}

// Seek jumps to a position (seconds) in the current track.
func (c *Client) Seek(ctx context.Context, position float64) error {
	body := map[string]float64{"position": position}
	return c.Post(ctx, "/seek", body, nil)
}

// Playlists returns the names of all playlists in the library.
func (c *Client) Playlists(ctx context.Context) ([]string, error) {
	var resp PlaylistsResponse
	if err := c.Get(ctx, "/playlists", &resp); err != nil {
		return nil, err
	}
	return resp.Playlists, nil
}

// PlayPlaylist starts playback of a playlist by name.
func (c *Client) PlayPlaylist(ctx context.Context, name string) error {
	return c.Post(ctx, "/playlist/"+url.PathEscape(name)+"/play", nil, nil)
}

// Search queries the library for tracks, albums or artists.
func (c *Client) Search(ctx context.Context, query string, kind core.SearchKind) ([]core.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if !kind.Valid() {
		kind = core.SearchTracks
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("type", string(kind))

	var resp SearchResponse
	if err := c.Get(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	results := make([]core.SearchResult, len(resp.Results))
	for i, item := range resp.Results {
		results[i] = core.SearchResult{
			Kind:   core.SearchKind(item.Type),
			Name:   item.Name,
			Artist: item.Artist,
			Album:  item.Album,
			ID:     item.ID,
		}
	}
	return results, nil
}

// PlayTrack plays a specific track by its library ID.
func (c *Client) PlayTrack(ctx context.Context, trackID string) (*TrackResponse, error) {
	var resp CommandResponse
	if err := c.Post(ctx, "/play-track/"+url.PathEscape(trackID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Track, nil
}

// RepeatMode returns the server's repeat mode.
func (c *Client) RepeatMode(ctx context.Context) (core.RepeatMode, error) {
	var resp RepeatResponse
	if err := c.Get(ctx, "/repeat", &resp); err != nil {
		return core.RepeatOff, err
	}
	return core.ParseRepeatMode(resp.Repeat), nil
}

// SetRepeatMode sets the server's repeat mode.
func (c *Client) SetRepeatMode(ctx context.Context, mode core.RepeatMode) error {
	body := map[string]string{"mode": string(mode)}
	return c.Post(ctx, "/repeat", body, nil)
}

// ShuffleMode returns whether shuffle is enabled.
func (c *Client) ShuffleMode(ctx context.Context) (bool, error) {
	var resp ShuffleResponse
	if err := c.Get(ctx, "/shuffle", &resp); err != nil {
		return false, err
	}
	return resp.Shuffle, nil
}

// SetShuffle enables or disables shuffle.
func (c *Client) SetShuffle(ctx context.Context, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.Post(ctx, "/shuffle", body, nil)
}

// Artwork returns the current track's artwork as JPEG bytes.
func (c *Client) Artwork(ctx context.Context) ([]byte, error) {
	return c.GetRaw(ctx, "/artwork")
}

// RegisterDevice registers this device as trusted on the server.
func (c *Client) RegisterDevice(ctx context.Context, fingerprint, name string) error {
	body := map[string]string{
		"device_fingerprint": fingerprint,
		"device_name":        name,
	}
	return c.Post(ctx, "/device/register", body, nil)
}

// CheckDevice asks whether a device fingerprint is trusted.
func (c *Client) CheckDevice(ctx context.Context, fingerprint string) (*DeviceCheckResponse, error) {
	body := map[string]string{"device_fingerprint": fingerprint}
	var resp DeviceCheckResponse
	if err := c.Post(ctx, "/device/check", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDevices returns all trusted devices.
func (c *Client) ListDevices(ctx context.Context) (*DeviceListResponse, error) {
	var resp DeviceListResponse
	if err := c.Get(ctx, "/device/list", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveDevice removes a trusted device by fingerprint.
func (c *Client) RemoveDevice(ctx context.Context, fingerprint string) error {
	return c.Delete(ctx, "/device/remove/"+url.PathEscape(fingerprint), nil)
}

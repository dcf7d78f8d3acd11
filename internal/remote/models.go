package remote

// StatusResponse is the payload of GET /status.
type StatusResponse struct {
	State  string `json:"state"`
	Volume int    `json:"volume"`
}

// TrackResponse is the payload of GET /current-track. Name, artist and
// album are null when nothing is loaded.
type TrackResponse struct {
	Name     *string `json:"name"`
	Artist   *string `json:"artist"`
	Album    *string `json:"album"`
	Duration float64 `json:"duration"`
	Position float64 `json:"position"`
	State    string  `json:"state"`
}

// CommandResponse is the generic payload of playback command posts.
// Skip commands include the track that is now playing.
type CommandResponse struct {
	Action  string         `json:"action"`
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Track   *TrackResponse `json:"track,omitempty"`
}

// PlaylistsResponse is the payload of GET /playlists.
type PlaylistsResponse struct {
	Playlists []string `json:"playlists"`
	Count     int      `json:"count"`
}

// SearchItem is a single entry of a search response.
type SearchItem struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	ID     string `json:"id,omitempty"`
}

// SearchResponse is the payload of GET /search.
type SearchResponse struct {
	Query   string       `json:"query"`
	Type    string       `json:"type"`
	Results []SearchItem `json:"results"`
	Count   int          `json:"count"`
}

// RepeatResponse is the payload of GET /repeat.
type RepeatResponse struct {
	Repeat string `json:"repeat"`
}

// ShuffleResponse is the payload of GET /shuffle.
type ShuffleResponse struct {
	Shuffle bool `json:"shuffle"`
}

// PingResponse is the payload of GET /ping.
type PingResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// TrustedDevice describes a registered device on the server.
type TrustedDevice struct {
	Name     string `json:"name"`
	AddedAt  string `json:"added_at"`
	LastSeen string `json:"last_seen"`
}

// DeviceListResponse is the payload of GET /device/list.
type DeviceListResponse struct {
	Devices map[string]TrustedDevice `json:"devices"`
	Count   int                      `json:"count"`
}

// DeviceCheckResponse is the payload of POST /device/check.
type DeviceCheckResponse struct {
	IsTrusted     bool `json:"is_trusted"`
	RequiresToken bool `json:"requires_token"`
}

// errorResponse is the server's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

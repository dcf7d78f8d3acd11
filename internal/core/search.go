package core

// SearchKind represents a type of library content to search.
type SearchKind string

const (
	SearchTracks  SearchKind = "track"
	SearchAlbums  SearchKind = "album"
	SearchArtists SearchKind = "artist"
)

// Valid returns true if the kind is one the server accepts.
func (k SearchKind) Valid() bool {
	switch k {
	case SearchTracks, SearchAlbums, SearchArtists:
		return true
	}
	return false
}

// SearchResult is a single library search hit.
type SearchResult struct {
	Kind   SearchKind `json:"type"`
	Name   string     `json:"name"`
	Artist string     `json:"artist,omitempty"`
	Album  string     `json:"album,omitempty"`
	ID     string     `json:"id,omitempty"`
}

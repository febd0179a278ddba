package domain

import (
	"strings"
	"time"
)

// AccessMode is the kind of access a caller requests on a playlist.
type AccessMode string

const (
	AccessRead  AccessMode = "read"
	AccessWrite AccessMode = "write"
)

// Playlist is a named song collection with exactly one owner.
type Playlist struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Owner     string    `json:"owner" db:"owner"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Validate checks the invariants a playlist must satisfy before insert.
func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Invalid("playlist name is required")
	}
	if p.Owner == "" {
		return Invalid("playlist owner is required")
	}
	return nil
}

// IsOwnedBy reports whether userID is the playlist's owner.
func (p *Playlist) IsOwnedBy(userID string) bool {
	return userID != "" && p.Owner == userID
}

// PlaylistSummary is the list view of a playlist the caller can access.
type PlaylistSummary struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Username string `json:"username" db:"username"`
}

// SongSummary is the cached, serializable view of a song inside a playlist.
type SongSummary struct {
	ID        string `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Performer string `json:"performer" db:"performer"`
}

// PlaylistSongs is a playlist together with its song membership. It is the
// payload the export worker renders.
type PlaylistSongs struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Songs []SongSummary `json:"songs"`
}

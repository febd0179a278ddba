package playlist

import (
	"context"

	"github.com/openmusic/playlists-api/internal/domain"
)

// Repository defines the data access contract for playlists and their song
// membership. Implementations must be safe for concurrent use and must report
// logical absence as domain.ErrNotFound, distinct from connectivity faults.
type Repository interface {
	// Get returns a playlist. Returns domain.ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Playlist, error)

	// Create inserts a new playlist.
	Create(ctx context.Context, p *domain.Playlist) error

	// ListAccessible returns playlists the user owns or collaborates on.
	ListAccessible(ctx context.Context, userID string) ([]domain.PlaylistSummary, error)

	// Delete removes a playlist together with every collaboration and song
	// entry referencing it, atomically. Returns domain.ErrNotFound if nothing
	// was deleted.
	Delete(ctx context.Context, id string) error

	// ListSongs returns the playlist's songs in a stable order.
	ListSongs(ctx context.Context, playlistID string) ([]domain.SongSummary, error)

	// AddSong adds a song to the playlist in a single statement. Re-adding a
	// present song is a no-op. An unknown playlist or song is domain.ErrNotFound.
	AddSong(ctx context.Context, playlistID, songID string) error

	// RemoveSong removes a song from the playlist in a single statement.
	// Returns domain.ErrNotFound if the song was not in the playlist.
	RemoveSong(ctx context.Context, playlistID, songID string) error
}

// CollaboratorChecker answers whether a user collaborates on a playlist.
// collaboration.Service satisfies it.
type CollaboratorChecker interface {
	IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error)
}

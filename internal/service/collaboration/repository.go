package collaboration

import (
	"context"

	"github.com/openmusic/playlists-api/internal/domain"
)

// Repository defines the data access contract for collaborations.
// Implementations must be safe for concurrent use.
type Repository interface {
	// PlaylistOwner returns the owner of a playlist, or domain.ErrNotFound.
	PlaylistOwner(ctx context.Context, playlistID string) (string, error)

	// Insert stores a collaboration. A duplicate (playlist, user) pair must be
	// reported as domain.ErrConflict and an unknown user as domain.ErrNotFound.
	Insert(ctx context.Context, c *domain.Collaboration) error

	// Delete removes the collaboration for the pair. Returns domain.ErrNotFound
	// when no row matched.
	Delete(ctx context.Context, playlistID, userID string) error

	// Exists reports whether the pair has a collaboration row.
	Exists(ctx context.Context, playlistID, userID string) (bool, error)
}

// Invalidator is notified whenever the set of users with access to a playlist
// changes, so any cached view derived from it can be dropped.
type Invalidator interface {
	InvalidateAccess(ctx context.Context, playlistID string)
}

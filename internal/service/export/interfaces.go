package export

import (
	"context"

	"github.com/openmusic/playlists-api/internal/domain"
)

// AccessVerifier checks a caller's rights on a playlist. playlist.Service
// implements it.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, playlistID, userID string, mode domain.AccessMode) error
}

// Publisher hands a payload to a queue and returns the broker's message id
// once the broker has acknowledged it. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

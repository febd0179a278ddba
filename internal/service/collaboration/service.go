package collaboration

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
)

var log = logger.Component("collaboration")

// Service implements collaborator management. It is safe for concurrent use.
type Service struct {
	repo        Repository
	invalidator Invalidator
}

// NewService creates a collaboration service. inv may be nil.
func NewService(repo Repository, inv Invalidator) *Service {
	return &Service{repo: repo, invalidator: inv}
}

// AddCollaborator grants userID collaborator access to playlistID and returns
// the new collaboration id.
func (s *Service) AddCollaborator(ctx context.Context, playlistID, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if playlistID == "" || userID == "" {
		return "", domain.Invalid("playlist id and user id are required")
	}

	owner, err := s.repo.PlaylistOwner(ctx, playlistID)
	if err != nil {
		return "", domain.Persistence("lookup playlist owner", err)
	}
	if owner == userID {
		return "", domain.Invalid("the owner of playlist %s cannot be added as a collaborator", playlistID)
	}

	c := &domain.Collaboration{
		ID:         "collab-" + uuid.New().String(),
		PlaylistID: playlistID,
		UserID:     userID,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		log.Warn("failed to add collaboration", "playlist_id", playlistID, "user_id", userID, "error", err)
		return "", domain.Persistence("insert collaboration", err)
	}

	s.notify(ctx, playlistID)
	log.Info("collaborator added", "playlist_id", playlistID, "user_id", userID, "collaboration_id", c.ID)
	return c.ID, nil
}

// RemoveCollaborator revokes userID's collaborator access. A missing row is
// reported as domain.ErrNotFound, not swallowed.
func (s *Service) RemoveCollaborator(ctx context.Context, playlistID, userID string) error {
	if err := s.repo.Delete(ctx, playlistID, userID); err != nil {
		log.Warn("failed to remove collaboration", "playlist_id", playlistID, "user_id", userID, "error", err)
		return domain.Persistence("delete collaboration", err)
	}
	s.notify(ctx, playlistID)
	log.Info("collaborator removed", "playlist_id", playlistID, "user_id", userID)
	return nil
}

// IsCollaborator reports whether userID collaborates on playlistID. It only
// errors on storage failure.
func (s *Service) IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error) {
	ok, err := s.repo.Exists(ctx, playlistID, userID)
	if err != nil {
		return false, domain.Persistence("find collaboration", err)
	}
	return ok, nil
}

func (s *Service) notify(ctx context.Context, playlistID string) {
	if s.invalidator != nil {
		s.invalidator.InvalidateAccess(ctx, playlistID)
	}
}

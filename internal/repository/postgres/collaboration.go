package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openmusic/playlists-api/internal/domain"
)

// CollaborationRepo implements collaboration.Repository against PostgreSQL.
// Uniqueness of (playlist_id, user_id) is enforced by a unique constraint.
type CollaborationRepo struct{ db *sql.DB }

// NewCollaborationRepo creates a Postgres-backed collaboration repository.
func NewCollaborationRepo(db *sql.DB) *CollaborationRepo { return &CollaborationRepo{db: db} }

func (r *CollaborationRepo) PlaylistOwner(ctx context.Context, playlistID string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT owner FROM playlists WHERE id = $1`, playlistID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NotFound("playlist %s", playlistID)
	}
	if err != nil {
		return "", fmt.Errorf("get playlist owner: %w", err)
	}
	return owner, nil
}

func (r *CollaborationRepo) Insert(ctx context.Context, c *domain.Collaboration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO collaborations (id, playlist_id, user_id) VALUES ($1, $2, $3)`,
		c.ID, c.PlaylistID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert collaboration: %w", mapConstraint(err, "collaboration for user "+c.UserID))
	}
	return nil
}

func (r *CollaborationRepo) Delete(ctx context.Context, playlistID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM collaborations WHERE playlist_id = $1 AND user_id = $2`,
		playlistID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete collaboration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("collaboration of user %s on playlist %s", userID, playlistID)
	}
	return nil
}

func (r *CollaborationRepo) Exists(ctx context.Context, playlistID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM collaborations WHERE playlist_id = $1 AND user_id = $2)`,
		playlistID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("find collaboration: %w", err)
	}
	return exists, nil
}

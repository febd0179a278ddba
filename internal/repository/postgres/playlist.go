package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openmusic/playlists-api/internal/domain"
)

// PlaylistRepo implements playlist.Repository against PostgreSQL.
type PlaylistRepo struct{ db *sql.DB }

// NewPlaylistRepo creates a Postgres-backed playlist repository.
func NewPlaylistRepo(db *sql.DB) *PlaylistRepo { return &PlaylistRepo{db: db} }

func (r *PlaylistRepo) Get(ctx context.Context, id string) (*domain.Playlist, error) {
	var p domain.Playlist
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner, created_at FROM playlists WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Owner, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("playlist %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	return &p, nil
}

func (r *PlaylistRepo) Create(ctx context.Context, p *domain.Playlist) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO playlists (id, name, owner, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Owner, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert playlist: %w", mapConstraint(err, "playlist owner "+p.Owner))
	}
	return nil
}

func (r *PlaylistRepo) ListAccessible(ctx context.Context, userID string) ([]domain.PlaylistSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, u.username
		FROM playlists p
		JOIN users u ON u.id = p.owner
		LEFT JOIN collaborations c ON c.playlist_id = p.id AND c.user_id = $1
		WHERE p.owner = $1 OR c.user_id IS NOT NULL
		ORDER BY p.created_at, p.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	out := []domain.PlaylistSummary{}
	for rows.Next() {
		var s domain.PlaylistSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Username); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the playlist with its collaborations and song entries in one
// transaction.
func (r *PlaylistRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete playlist: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collaborations WHERE playlist_id = $1`, id); err != nil {
		return fmt.Errorf("delete collaborations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id = $1`, id); err != nil {
		return fmt.Errorf("delete playlist songs: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("playlist %s", id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepo) ListSongs(ctx context.Context, playlistID string) ([]domain.SongSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.performer
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = $1
		ORDER BY s.title, s.id
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	out := []domain.SongSummary{}
	for rows.Next() {
		var s domain.SongSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Performer); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AddSong is idempotent: a pair already present is left untouched.
func (r *PlaylistRepo) AddSong(ctx context.Context, playlistID, songID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id) VALUES ($1, $2)
		ON CONFLICT (playlist_id, song_id) DO NOTHING
	`, playlistID, songID)
	if err != nil {
		return fmt.Errorf("add playlist song: %w", mapConstraint(err, "song "+songID))
	}
	return nil
}

func (r *PlaylistRepo) RemoveSong(ctx context.Context, playlistID, songID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2`,
		playlistID, songID,
	)
	if err != nil {
		return fmt.Errorf("remove playlist song: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("song %s in playlist %s", songID, playlistID)
	}
	return nil
}

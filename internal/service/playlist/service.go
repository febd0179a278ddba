package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/openmusic/playlists-api/internal/cache"
	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
)

var log = logger.Component("playlist")

const (
	DefaultSongsTTL          = 30 * time.Minute
	DefaultInvalidateTimeout = 2 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
)

// Source says where a song list was served from.
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "db"
)

// Options tunes the service. Zero values fall back to the defaults above.
type Options struct {
	SongsTTL          time.Duration
	InvalidateTimeout time.Duration
	WriteTimeout      time.Duration
}

// CacheStats is a snapshot of the song list cache counters.
type CacheStats struct {
	Hits                 int64 `json:"hits"`
	Misses               int64 `json:"misses"`
	Errors               int64 `json:"errors"`
	InvalidationFailures int64 `json:"invalidation_failures"`
}

// Service is the playlist authorization and cache-coherence core. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	repo    Repository
	collabs CollaboratorChecker
	cache   cache.Store
	opts    Options

	hits, misses, cacheErrors, invalidationFailures atomic.Int64
}

// NewService wires the service. A nil store runs without a cache.
func NewService(repo Repository, collabs CollaboratorChecker, store cache.Store, opts Options) *Service {
	if store == nil {
		store = cache.NopStore{}
	}
	if opts.SongsTTL <= 0 {
		opts.SongsTTL = DefaultSongsTTL
	}
	if opts.InvalidateTimeout <= 0 {
		opts.InvalidateTimeout = DefaultInvalidateTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	return &Service{repo: repo, collabs: collabs, cache: store, opts: opts}
}

// SetCollaboratorChecker breaks the construction cycle with the collaboration
// service, which needs this service as its invalidator.
func (s *Service) SetCollaboratorChecker(c CollaboratorChecker) { s.collabs = c }

// VerifyOwnership succeeds only for the playlist's owner. Collaborators are
// rejected with domain.ErrForbidden.
func (s *Service) VerifyOwnership(ctx context.Context, playlistID, userID string) error {
	p, err := s.repo.Get(ctx, playlistID)
	if err != nil {
		return domain.Persistence("get playlist", err)
	}
	if !p.IsOwnedBy(userID) {
		return domain.Forbidden("user %s does not own playlist %s", userID, playlistID)
	}
	return nil
}

// VerifyAccess succeeds for the owner and for collaborators, in both modes.
// Collaborator write rights cover song membership only; deletion and
// metadata changes go through VerifyOwnership.
func (s *Service) VerifyAccess(ctx context.Context, playlistID, userID string, mode domain.AccessMode) error {
	p, err := s.repo.Get(ctx, playlistID)
	if err != nil {
		return domain.Persistence("get playlist", err)
	}
	if p.IsOwnedBy(userID) {
		return nil
	}
	if s.collabs != nil && userID != "" {
		ok, err := s.collabs.IsCollaborator(ctx, playlistID, userID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return domain.Forbidden("user %s has no %s access to playlist %s", userID, mode, playlistID)
}

// CreatePlaylist stores a new playlist owned by owner.
func (s *Service) CreatePlaylist(ctx context.Context, name, owner string) (*domain.Playlist, error) {
	p := &domain.Playlist{
		ID:        "playlist-" + uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, domain.Persistence("insert playlist", err)
	}
	log.Info("playlist created", "playlist_id", p.ID, "owner", owner)
	return p, nil
}

// ListPlaylists returns the playlists userID owns or collaborates on.
func (s *Service) ListPlaylists(ctx context.Context, userID string) ([]domain.PlaylistSummary, error) {
	out, err := s.repo.ListAccessible(ctx, userID)
	if err != nil {
		return nil, domain.Persistence("list playlists", err)
	}
	return out, nil
}

// GetSongs returns the playlist's songs, from the cache when possible.
func (s *Service) GetSongs(ctx context.Context, playlistID string) ([]domain.SongSummary, error) {
	songs, _, err := s.GetSongsWithSource(ctx, playlistID)
	return songs, err
}

// GetSongsWithSource is GetSongs that also reports whether the cache served
// the result.
//
// A rebuild captures the entry's generation before reading the store and
// writes back only if no invalidation happened in between. Concurrent misses
// both rebuild; when neither races a mutation the last write wins.
func (s *Service) GetSongsWithSource(ctx context.Context, playlistID string) ([]domain.SongSummary, Source, error) {
	key := cache.PlaylistSongsKey(playlistID)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var songs []domain.SongSummary
		jerr := json.Unmarshal(data, &songs)
		if jerr == nil {
			s.hits.Add(1)
			return songs, SourceCache, nil
		}
		s.cacheErrors.Add(1)
		log.Warn("discarding undecodable cache entry", "key", key, "error", jerr)
	case errors.Is(err, cache.ErrMiss):
		s.misses.Add(1)
	default:
		s.cacheErrors.Add(1)
		log.Warn("cache read failed, falling back to store", "key", key, "error", err)
	}

	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	gen, genErr := s.cache.Generation(ctx, key)
	if genErr != nil {
		s.cacheErrors.Add(1)
		log.Warn("cache generation read failed, result will not be cached", "key", key, "error", genErr)
	}

	if _, err := s.repo.Get(ctx, playlistID); err != nil {
		return nil, "", domain.Persistence("get playlist", err)
	}
	songs, err := s.repo.ListSongs(ctx, playlistID)
	if err != nil {
		return nil, "", domain.Persistence("list playlist songs", err)
	}
	if songs == nil {
		songs = []domain.SongSummary{}
	}

	if genErr == nil {
		s.fill(ctx, key, songs, gen)
	}
	return songs, SourceStore, nil
}

func (s *Service) fill(ctx context.Context, key string, songs []domain.SongSummary, gen int64) {
	encoded, err := json.Marshal(songs)
	if err != nil {
		return
	}
	stored, err := s.cache.SetIfGeneration(ctx, key, encoded, s.opts.SongsTTL, gen)
	if err != nil {
		s.cacheErrors.Add(1)
		log.Warn("cache write failed", "key", key, "error", err)
		return
	}
	if !stored {
		log.Debug("dropping rebuild invalidated while in flight", "key", key, "generation", gen)
	}
}

// GetPlaylistSongs returns the playlist header with its songs. The export
// worker renders this.
func (s *Service) GetPlaylistSongs(ctx context.Context, playlistID string) (*domain.PlaylistSongs, error) {
	p, err := s.repo.Get(ctx, playlistID)
	if err != nil {
		return nil, domain.Persistence("get playlist", err)
	}
	songs, err := s.GetSongs(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return &domain.PlaylistSongs{ID: p.ID, Name: p.Name, Songs: songs}, nil
}

// AddSong adds songID to the playlist and invalidates its cached song list.
// Re-adding a song already present is a successful no-op.
func (s *Service) AddSong(ctx context.Context, playlistID, songID string) error {
	if strings.TrimSpace(songID) == "" {
		return domain.Invalid("song id is required")
	}
	return s.mutate(ctx, playlistID, "add song", func(ctx context.Context) error {
		return s.repo.AddSong(ctx, playlistID, songID)
	})
}

// RemoveSong removes songID from the playlist and invalidates its cached song
// list. A song that was not in the playlist is domain.ErrNotFound.
func (s *Service) RemoveSong(ctx context.Context, playlistID, songID string) error {
	if strings.TrimSpace(songID) == "" {
		return domain.Invalid("song id is required")
	}
	return s.mutate(ctx, playlistID, "remove song", func(ctx context.Context) error {
		return s.repo.RemoveSong(ctx, playlistID, songID)
	})
}

// DeletePlaylist removes the playlist, its song entries and every
// collaboration on it, then invalidates the cache. Callers must have passed
// VerifyOwnership.
func (s *Service) DeletePlaylist(ctx context.Context, playlistID string) error {
	err := s.mutate(ctx, playlistID, "delete playlist", func(ctx context.Context) error {
		return s.repo.Delete(ctx, playlistID)
	})
	if err == nil {
		s.InvalidateAccess(ctx, playlistID)
		log.Info("playlist deleted", "playlist_id", playlistID)
	}
	return err
}

// InvalidateAccess satisfies collaboration.Invalidator. No accessible-by view
// is cached today, so there is nothing to drop.
func (s *Service) InvalidateAccess(_ context.Context, playlistID string) {
	log.Debug("access set changed", "playlist_id", playlistID)
}

// CacheStats returns the current cache counters.
func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		Hits:                 s.hits.Load(),
		Misses:               s.misses.Load(),
		Errors:               s.cacheErrors.Load(),
		InvalidationFailures: s.invalidationFailures.Load(),
	}
}

// mutate runs a single atomic store mutation and then invalidates the song
// cache. Once started, the mutation and the invalidation run detached from the
// caller's cancellation so a disconnect cannot strand a committed write with
// a stale cache entry.
func (s *Service) mutate(ctx context.Context, playlistID, op string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.WriteTimeout)
	defer cancel()

	err := fn(wctx)
	if err == nil || !isLogical(err) {
		// A transport error may still hide a commit; dropping the entry is harmless.
		s.invalidateSongs(ctx, playlistID)
	}
	if err != nil {
		return domain.Persistence(op, err)
	}
	return nil
}

func (s *Service) invalidateSongs(ctx context.Context, playlistID string) {
	key := cache.PlaylistSongsKey(playlistID)
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.InvalidateTimeout)
	defer cancel()

	if err := s.cache.Invalidate(ictx, key); err != nil {
		s.invalidationFailures.Add(1)
		log.Warn("cache invalidation failed, entry stale until TTL expiry",
			"key", key, "ttl", s.opts.SongsTTL.String(), "error", err)
	}
}

func isLogical(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrInvalid) ||
		errors.Is(err, domain.ErrForbidden)
}

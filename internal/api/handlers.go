package api

import (
	"context"
	"net/http"
	"time"

	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/httputil"
	"github.com/openmusic/playlists-api/internal/service/playlist"
)

// PlaylistService is the playlist surface the handlers use.
type PlaylistService interface {
	CreatePlaylist(ctx context.Context, name, owner string) (*domain.Playlist, error)
	ListPlaylists(ctx context.Context, userID string) ([]domain.PlaylistSummary, error)
	DeletePlaylist(ctx context.Context, playlistID string) error
	VerifyOwnership(ctx context.Context, playlistID, userID string) error
	VerifyAccess(ctx context.Context, playlistID, userID string, mode domain.AccessMode) error
	GetSongsWithSource(ctx context.Context, playlistID string) ([]domain.SongSummary, playlist.Source, error)
	AddSong(ctx context.Context, playlistID, songID string) error
	RemoveSong(ctx context.Context, playlistID, songID string) error
	CacheStats() playlist.CacheStats
}

// CollaborationService manages collaborators.
type CollaborationService interface {
	AddCollaborator(ctx context.Context, playlistID, userID string) (string, error)
	RemoveCollaborator(ctx context.Context, playlistID, userID string) error
}

// ExportService submits export jobs.
type ExportService interface {
	SubmitExport(ctx context.Context, playlistID, userID, targetEmail string) (*domain.Receipt, error)
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Handlers holds the services behind the HTTP routes.
type Handlers struct {
	playlists      PlaylistService
	collaborations CollaborationService
	exports        ExportService
	checks         map[string]HealthCheck
}

// NewHandlers creates the handler set.
func NewHandlers(p PlaylistService, c CollaborationService, e ExportService) *Handlers {
	return &Handlers{playlists: p, collaborations: c, exports: e, checks: map[string]HealthCheck{}}
}

// AddHealthCheck registers a dependency probe reported by /health.
func (h *Handlers) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// HealthCheck reports dependency status and cache counters. The database is
// required; any other failing dependency marks the service degraded.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			if name == "database" {
				status, code = "unhealthy", http.StatusServiceUnavailable
			} else if status == "healthy" {
				status = "degraded"
			}
			continue
		}
		deps[name] = "ok"
	}

	httputil.JSON(w, code, map[string]any{
		"status":       status,
		"timestamp":    time.Now().UTC(),
		"dependencies": deps,
		"cache":        h.playlists.CacheStats(),
	})
}

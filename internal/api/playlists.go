package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openmusic/playlists-api/internal/auth"
	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/httputil"
)

// DataSourceHeader tells clients whether songs came from the cache or the db.
const DataSourceHeader = "X-Data-Source"

type createPlaylistRequest struct {
	Name string `json:"name"`
}

type songRequest struct {
	SongID string `json:"songId"`
}

func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	p, err := h.playlists.CreatePlaylist(r.Context(), req.Name, auth.UserID(r.Context()))
	if err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.Created(w, "Playlist added", map[string]string{"playlistId": p.ID})
}

func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	out, err := h.playlists.ListPlaylists(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"playlists": out})
}

// DeletePlaylist is owner-only; collaborators get 403.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := h.playlists.VerifyOwnership(ctx, id, auth.UserID(ctx)); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	if err := h.playlists.DeletePlaylist(ctx, id); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.Message(w, "Playlist deleted")
}

func (h *Handlers) AddSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	var req songRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.playlists.VerifyAccess(ctx, id, auth.UserID(ctx), domain.AccessWrite); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	if err := h.playlists.AddSong(ctx, id, req.SongID); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.Created(w, "Song added to playlist", nil)
}

func (h *Handlers) GetSongs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := h.playlists.VerifyAccess(ctx, id, auth.UserID(ctx), domain.AccessRead); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	songs, src, err := h.playlists.GetSongsWithSource(ctx, id)
	if err != nil {
		httputil.ServiceError(w, err)
		return
	}
	w.Header().Set(DataSourceHeader, string(src))
	httputil.OK(w, map[string]any{"songs": songs})
}

func (h *Handlers) RemoveSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	var req songRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.playlists.VerifyAccess(ctx, id, auth.UserID(ctx), domain.AccessWrite); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	if err := h.playlists.RemoveSong(ctx, id, req.SongID); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.Message(w, "Song removed from playlist")
}

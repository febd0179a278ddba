package api

import (
	"net/http"

	"github.com/openmusic/playlists-api/internal/auth"
	"github.com/openmusic/playlists-api/internal/pkg/httputil"
)

type collaborationRequest struct {
	PlaylistID string `json:"playlistId"`
	UserID     string `json:"userId"`
}

// AddCollaborator lets the owner share a playlist.
func (h *Handlers) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req collaborationRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.PlaylistID == "" || req.UserID == "" {
		httputil.BadRequest(w, "playlistId and userId are required")
		return
	}
	if err := h.playlists.VerifyOwnership(ctx, req.PlaylistID, auth.UserID(ctx)); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	id, err := h.collaborations.AddCollaborator(ctx, req.PlaylistID, req.UserID)
	if err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.Created(w, "Collaboration added", map[string]string{"collaborationId": id})
}

// RemoveCollaborator lets the owner revoke a collaborator.
func (h *Handlers) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req collaborationRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.playlists.VerifyOwnership(ctx, req.PlaylistID, auth.UserID(ctx)); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	if err := h.collaborations.RemoveCollaborator(ctx, req.PlaylistID, req.UserID); err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.Message(w, "Collaboration removed")
}

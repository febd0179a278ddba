package api

import (
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"
	"github.com/openmusic/playlists-api/internal/auth"
	"github.com/openmusic/playlists-api/internal/pkg/httputil"
)

type exportRequest struct {
	TargetEmail string `json:"targetEmail"`
}

// ExportPlaylist queues an export and answers 201 once the broker has the
// job. It does not wait for the mail to go out.
func (h *Handlers) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req exportRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	addr, err := mail.ParseAddress(req.TargetEmail)
	if err != nil || addr.Address != req.TargetEmail {
		httputil.BadRequest(w, "targetEmail must be a plain email address")
		return
	}

	receipt, err := h.exports.SubmitExport(ctx, chi.URLParam(r, "id"), auth.UserID(ctx), addr.Address)
	if err != nil {
		httputil.ServiceError(w, err)
		return
	}
	httputil.Created(w, "Your request is being processed", receipt)
}

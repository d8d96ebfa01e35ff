// internal/app/features/resources/like.go
package resources

import (
	"net/http"

	uierrors "github.com/dalemusser/kinderhub/internal/app/features/errors"
)

// HandleLike handles POST /resources/{id}/like and returns the new count.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, msgBadID)
		return
	}

	likes, err := h.Catalog.Like(r.Context(), id)
	if err != nil {
		h.writeStoreErr(w, r, "like resource", err, msgLikeFailed)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, writeResponse{Likes: &likes})
}

// internal/app/features/resources/admindelete.go
package resources

import (
	"net/http"

	uierrors "github.com/dalemusser/kinderhub/internal/app/features/errors"
)

// HandleDelete handles POST /resources/{id}/delete. Deleting an id that is
// already gone succeeds.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, msgBadID)
		return
	}

	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		h.writeStoreErr(w, r, "delete resource", err, msgDeleteFailed)
		return
	}

	h.Audit.ResourceDeleted(r.Context(), r, id.Hex())
	uierrors.WriteJSON(w, http.StatusOK, writeResponse{Message: "Resource deleted."})
}

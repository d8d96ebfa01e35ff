// internal/app/features/resources/adminedit.go
package resources

import (
	"net/http"

	uierrors "github.com/dalemusser/kinderhub/internal/app/features/errors"
	"github.com/dalemusser/kinderhub/internal/domain/models"
)

// HandleEdit handles POST /resources/{id}/edit. Every form field is
// overwritten; likes are kept.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, msgBadID)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, msgBadForm)
		return
	}

	in, res := readForm(r).Validate()
	if res.HasErrors() {
		uierrors.WriteValidation(w, res)
		return
	}

	if err := h.Catalog.Update(r.Context(), id, models.FullPatch(in)); err != nil {
		h.writeStoreErr(w, r, "update resource", err, msgUpdateFailed)
		return
	}

	h.Audit.ResourceUpdated(r.Context(), r, id.Hex())

	resp := writeResponse{Message: "Resource saved."}
	if updated, ok := h.Catalog.Find(id); ok {
		c := toCard(updated)
		resp.Resource = &c
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

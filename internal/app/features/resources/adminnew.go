// internal/app/features/resources/adminnew.go
package resources

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/kinderhub/internal/app/features/errors"
	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"github.com/dalemusser/kinderhub/internal/app/system/inputval"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// readForm collects the add/edit form. Text is kept as typed; responses are
// JSON and never rendered as HTML here.
func readForm(r *http.Request) inputval.ResourceForm {
	return inputval.ResourceForm{
		Title:       r.FormValue("title"),
		Subject:     r.FormValue("subject"),
		Type:        r.FormValue("type"),
		URL:         r.FormValue("url"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
	}
}

func parseID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
}

// writeStoreErr maps a repository failure onto a notification.
func (h *Handler) writeStoreErr(w http.ResponseWriter, r *http.Request, op string, err error, userMsg string) {
	switch {
	case errors.Is(err, resourcestore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+" failed", err, msgNotFound)
	case errors.Is(err, resourcestore.ErrUnavailable):
		h.ErrLog.LogUnavailable(w, r, op+" failed", err, userMsg)
	default:
		h.ErrLog.LogServerError(w, r, op+" failed", err, userMsg)
	}
}

// HandleCreate handles POST /resources.
//
// Form: title, subject, type, url, description, tags (comma-separated).
// 201 with the new card, which is now first in the catalog.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, msgBadForm)
		return
	}

	in, res := readForm(r).Validate()
	if res.HasErrors() {
		uierrors.WriteValidation(w, res)
		return
	}

	created, err := h.Catalog.Create(r.Context(), in)
	if err != nil {
		h.writeStoreErr(w, r, "create resource", err, msgCreateFailed)
		return
	}

	h.Audit.ResourceCreated(r.Context(), r, created.ID.Hex(), created.Title)

	c := toCard(created)
	uierrors.WriteJSON(w, http.StatusCreated, writeResponse{Message: msgCreated, Resource: &c})
}

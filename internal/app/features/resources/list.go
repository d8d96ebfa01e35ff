// internal/app/features/resources/list.go
package resources

import (
	"net/http"

	uierrors "github.com/dalemusser/kinderhub/internal/app/features/errors"
	"github.com/dalemusser/kinderhub/internal/app/system/auth"
	"github.com/dalemusser/kinderhub/internal/app/system/filter"
	"github.com/dalemusser/kinderhub/internal/domain/models"
	"go.uber.org/zap"
)

// Session keys for the remembered filter inputs.
const (
	prefQuery   = "filter_q"
	prefSubject = "filter_subject"
)

// criteria resolves the filter inputs for this request. Query parameters
// that are present replace the remembered values and are saved back to the
// session; absent ones fall back to what the session remembers.
func (h *Handler) criteria(w http.ResponseWriter, r *http.Request) (filter.Criteria, error) {
	sess := h.Gate.Session(r)
	q, _ := sess.Values[prefQuery].(string)
	subject, _ := sess.Values[prefSubject].(string)

	params := r.URL.Query()
	changed := false
	if params.Has("q") {
		q = params.Get("q")
		changed = true
	}
	if params.Has("subject") {
		subject = params.Get("subject")
		changed = true
	}

	sel, err := models.ParseSubjectSelector(subject)
	if err != nil {
		return filter.Criteria{}, err
	}

	if changed {
		sess.Values[prefQuery] = q
		sess.Values[prefSubject] = string(sel)
		if err := sess.Save(r, w); err != nil {
			h.Log.Warn("save filter preferences failed", zap.Error(err))
		}
	}
	return filter.Criteria{Subject: sel, Query: q}, nil
}

// ServeList handles GET /resources.
//
// Query: q (free text), subject ("All" or a subject). Both are remembered
// for the session. The response always carries the current cards; a failed
// load adds "error" so clients can offer to reload.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	crit, err := h.criteria(w, r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad subject filter", err, msgBadSubject)
		return
	}

	items := h.Catalog.Visible(crit)
	resp := listResponse{
		Admin:    auth.IsAdmin(r),
		Query:    crit.Query,
		Subject:  crit.Subject,
		Subjects: models.SubjectSelectors(),
		Items:    toCards(items),
		Total:    len(items),
		Loaded:   h.Catalog.Loaded(),
	}
	if h.Catalog.LoadErr() != nil {
		resp.Error = msgLoadFailed
	}

	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// ServeSubjects handles GET /resources/subjects.
func (h *Handler) ServeSubjects(w http.ResponseWriter, r *http.Request) {
	uierrors.WriteJSON(w, http.StatusOK, map[string][]models.SubjectSelector{
		"subjects": models.SubjectSelectors(),
	})
}

// HandleReload handles POST /resources/reload ("try again"). On success it
// answers like ServeList; on failure the previous cards stay in place and
// a 503 notification is returned.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Load(r.Context()); err != nil {
		h.ErrLog.LogUnavailable(w, r, "reload catalog failed", err, msgLoadFailed)
		return
	}
	h.ServeList(w, r)
}

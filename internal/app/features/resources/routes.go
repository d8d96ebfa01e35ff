// internal/app/features/resources/routes.go
package resources

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the catalog endpoints under whatever base path the caller
// chooses (typically "/resources" from bootstrap). The Gate's LoadSession
// middleware must run upstream.
//
//	r.Mount("/resources", resources.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Open to every session.
	r.Get("/", h.ServeList)
	r.Get("/subjects", h.ServeSubjects)
	r.Post("/reload", h.HandleReload)
	r.Post("/{id}/like", h.HandleLike)

	r.Group(func(pr chi.Router) {
		pr.Use(h.Gate.RequireAdmin)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}

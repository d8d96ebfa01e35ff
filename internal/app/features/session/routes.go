// internal/app/features/session/routes.go
package session

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted under /session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeState)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	return r
}

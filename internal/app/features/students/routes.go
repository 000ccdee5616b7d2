// internal/app/features/students/routes.go
package students

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /students.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{studentID}", h.Get)
	return r
}

// internal/app/features/forms/routes.go
package forms

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /project-forms.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{formID}", h.Get)
	r.Post("/{formID}/toggle", h.Toggle)
	r.Delete("/{formID}", h.Delete)
	r.Delete("/{formID}/projects/{projectID}", h.DeleteProject)
	r.Get("/{formID}/registrations.csv", h.ExportCSV)
	return r
}

// internal/app/features/projectgroups/routes.go
package projectgroups

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /project-groups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/initialize-registration", h.InitializeRegistration)
	r.Get("/registration-status/{formID}", h.RegistrationStatus)
	r.Get("/students/{formID}", h.StudentsByForm)
	r.Get("/{formID}", h.ListGroups)
	return r
}

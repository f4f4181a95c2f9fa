// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes mounts the anonymous auth pages at the root: /login, /signup,
// /password-recovery and /reset-password.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/login", h.ServeLogin)
	r.Post("/login", h.HandleLoginPost)
	r.Get("/signup", h.ServeSignup)
	r.Post("/signup", h.HandleSignup)
	r.Get("/password-recovery", h.ServeRecover)
	r.Post("/password-recovery", h.HandleRecover)
	r.Get("/reset-password", h.ServeReset)
	r.Post("/reset-password", h.HandleReset)
	return r
}

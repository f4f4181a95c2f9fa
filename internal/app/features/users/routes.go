// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user administration screens (typically at "/users").
// Only superusers may reach them; the backend enforces the same rule.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(auth.RoleSuperuser))

		pr.Get("/", h.ServeList)
		pr.Get("/list", h.ServeListFragment)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{user_id}/edit", h.ServeEdit)
		pr.Post("/{user_id}/edit", h.HandleEdit)

		pr.Get("/{user_id}/delete", h.Actions.ServeConfirm(userRef))
		pr.Post("/{user_id}/delete", h.Actions.HandleDelete(userRef))
	})

	return r
}

// internal/app/features/labusers/routes.go
package labusers

import (
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts a lab's member screens beneath /labs/{lab_id}/users.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/list", h.ServeListFragment)

		pr.Get("/new", h.ServeAdd)
		pr.Post("/", h.HandleAdd)

		pr.Get("/{user_id}/edit", h.ServeEdit)
		pr.Post("/{user_id}/edit", h.HandleEdit)
	})

	return r
}

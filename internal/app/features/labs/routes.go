// internal/app/features/labs/routes.go
package labs

import (
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the lab screens (typically at "/labs"). The per-lab
// inventory and member screens are mounted beneath /{lab_id} when given.
func Routes(h *Handler, sm *auth.SessionManager, items, members http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/list", h.ServeListFragment)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{lab_id}", h.ServeShow)
		pr.Get("/{lab_id}/edit", h.ServeEdit)
		pr.Post("/{lab_id}/edit", h.HandleEdit)

		pr.Get("/{lab_id}/delete", h.Actions.ServeConfirm(labRef))
		pr.Post("/{lab_id}/delete", h.Actions.HandleDelete(labRef))
	})

	if items != nil {
		r.Mount("/{lab_id}/items", items)
	}
	if members != nil {
		r.Mount("/{lab_id}/users", members)
	}

	return r
}

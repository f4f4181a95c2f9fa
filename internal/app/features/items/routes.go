// internal/app/features/items/routes.go
package items

import (
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts a lab's inventory beneath /labs/{lab_id}/items. Write
// controls are hidden from viewers without item rights; the backend
// refuses the writes themselves.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/list", h.ServeListFragment)

		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{item_id}/edit", h.ServeEdit)
		pr.Post("/{item_id}/edit", h.HandleEdit)

		pr.Get("/{item_id}/delete", h.Actions.ServeConfirm(itemRef))
		pr.Post("/{item_id}/delete", h.Actions.HandleDelete(itemRef))
	})

	return r
}

// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/app/system/paging"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/labhub/internal/app/system/viewer"
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type listPageData struct {
	viewdata.BaseVM
	Page     int
	Skeleton paging.Skeleton
}

type userRow struct {
	User     models.UserPublic
	FullName string
	Menu     entityref.Menu
}

type listData struct {
	Rows   []userRow
	Paging paging.Result
}

// ServeList renders the users page. The table body loads from
// ServeListFragment; skeleton rows stand in until it arrives.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "users_list", listPageData{
		BaseVM:   viewdata.NewBaseVM(w, r, "Users", "/labs"),
		Page:     paging.ParsePage(r),
		Skeleton: paging.NewSkeleton(5),
	})
}

// ServeListFragment renders one page of users for HTMX.
func (h *Handler) ServeListFragment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	api := viewer.Client(r, h.API)
	key := querycache.Key{Entity: querycache.Users, Viewer: viewer.ID(r), Page: paging.ParsePage(r)}
	res, pg, err := querycache.FetchPage(ctx, h.Cache, key,
		func(ctx context.Context, win paging.Window) (models.UsersPublic, error) {
			return api.ReadUsers(ctx, apiclient.ReadUsersParams{Skip: win.Skip, Limit: win.Limit})
		},
		func(v models.UsersPublic) int { return len(v.Data) })
	if err != nil {
		h.ErrLog.FragmentBackend(w, r, "users: list", err)
		return
	}

	rows := make([]userRow, 0, len(res.Data))
	for _, u := range res.Data {
		rows = append(rows, userRow{
			User:     u,
			FullName: viewdata.PtrOrNA(u.FullName),
			Menu:     entityref.MenuFor(entityref.UserRef{UserID: u.UserID}),
		})
	}
	templates.RenderSnippet(w, "users_table", listData{Rows: rows, Paging: pg})
}

// internal/app/features/labs/list.go
package labs

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/authz"
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

type labRow struct {
	Lab        models.LabPublic
	Place      string
	University string
	LabNum     string
	IsOwner    bool
	ShowMenu bool
	Menu     entityref.Menu
}

type listData struct {
	Rows   []labRow
	Paging paging.Result
}

// ServeList renders the labs page, the console's landing screen.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "labs_list", listPageData{
		BaseVM:   viewdata.NewBaseVM(w, r, "Labs", "/labs"),
		Page:     paging.ParsePage(r),
		Skeleton: paging.NewSkeleton(5),
	})
}

// ServeListFragment renders one page of the labs the viewer can see.
//
// The row menu is shown to the lab's owner and to superusers. Members
// holding can_edit_lab reach the same actions from the lab's own page,
// which loads their membership; the list does not fetch one per row.
func (h *Handler) ServeListFragment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	api := viewer.Client(r, h.API)
	key := querycache.Key{Entity: querycache.Labs, Viewer: viewer.ID(r), Page: paging.ParsePage(r)}
	res, pg, err := querycache.FetchPage(ctx, h.Cache, key,
		func(ctx context.Context, win paging.Window) (models.LabsPublic, error) {
			return api.ReadLabs(ctx, apiclient.ReadLabsParams{Skip: win.Skip, Limit: win.Limit})
		},
		func(v models.LabsPublic) int { return len(v.Data) })
	if err != nil {
		h.ErrLog.FragmentBackend(w, r, "labs: list", err)
		return
	}

	rows := make([]labRow, 0, len(res.Data))
	for _, l := range res.Data {
		access := authz.NewLabAccess(r, l, nil)
		rows = append(rows, labRow{
			Lab:        l,
			Place:      viewdata.PtrOrNA(l.LabPlace),
			University: viewdata.PtrOrNA(l.LabUniversity),
			LabNum:     viewdata.PtrOrNA(l.LabNum),
			IsOwner:    access.IsOwner(),
			ShowMenu:   access.CanEditLab(),
			Menu:       entityref.MenuFor(entityref.LabRef{LabID: l.LabID}),
		})
	}
	templates.RenderSnippet(w, "labs_table", listData{Rows: rows, Paging: pg})
}

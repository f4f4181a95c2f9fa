// internal/app/features/items/list.go
package items

import (
	"context"
	"html/template"
	"net/http"
	"net/url"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/authz"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/labhub/internal/app/system/paging"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/labhub/internal/app/system/viewer"
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

type listPageData struct {
	viewdata.BaseVM
	Lab          models.LabPublic
	University   string
	LabNum       string
	ListURL      string
	CanEditItems bool
	CanEditLab   bool
	LabMenu      entityref.Menu
	Page         int
	Skeleton     paging.Skeleton
}

type itemRow struct {
	Item     models.ItemPublic
	Quantity string
	ImgURL   string
	Vendor   string
	Params   template.HTML // sanitized; empty renders as N/A
	ShowMenu bool
	Menu     entityref.Menu
}

func newItemRow(labID string, it models.ItemPublic, showMenu bool) itemRow {
	row := itemRow{
		Item:     it,
		Quantity: viewdata.IntOrNA(it.Quantity),
		ImgURL:   viewdata.PtrOrNA(it.ItemImgURL),
		Vendor:   viewdata.PtrOrNA(it.ItemVendor),
		ShowMenu: showMenu,
		Menu:     entityref.MenuFor(entityref.ItemRef{LabID: labID, ItemID: it.ItemID}),
	}
	if it.ItemParams != nil && *it.ItemParams != "" {
		row.Params = htmlsanitize.SanitizeToHTML(*it.ItemParams)
	}
	return row
}

type listData struct {
	Rows    []itemRow
	ListURL string
	Paging  paging.Result
}

// ServeList renders a lab's inventory page. The header controls depend on
// the viewer's access; the rows load from ServeListFragment.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "lab_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	access, err := authz.LoadLabAccess(ctx, r, viewer.Client(r, h.API), h.Cache, labID)
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "items: load lab", err, "/labs")
		return
	}

	// Lab edits started here come back here.
	labMenu := entityref.MenuFor(entityref.LabRef{LabID: labID})
	labMenu.EditURL += "?" + url.Values{"return": {listPath(labID)}}.Encode()

	templates.Render(w, r, "items_list", listPageData{
		BaseVM:       viewdata.NewBaseVM(w, r, access.Lab.Title(), "/labs"),
		Lab:          access.Lab,
		University:   viewdata.PtrOrNA(access.Lab.LabUniversity),
		LabNum:       viewdata.PtrOrNA(access.Lab.LabNum),
		ListURL:      listPath(labID),
		CanEditItems: access.CanEditItems(),
		CanEditLab:   access.CanEditLab(),
		LabMenu:      labMenu,
		Page:         paging.ParsePage(r),
		Skeleton:     paging.NewSkeleton(8),
	})
}

// ServeListFragment renders one page of the lab's items. The page and the
// viewer's access load concurrently.
func (h *Handler) ServeListFragment(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "lab_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	api := viewer.Client(r, h.API)

	var (
		res    models.ItemsPublic
		pg     paging.Result
		access authz.LabAccess
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		key := querycache.Key{Entity: querycache.Items, Viewer: viewer.ID(r), Scope: labID, Page: paging.ParsePage(r)}
		res, pg, err = querycache.FetchPage(gctx, h.Cache, key,
			func(ctx context.Context, win paging.Window) (models.ItemsPublic, error) {
				return api.ReadItems(ctx, apiclient.ReadItemsParams{LabID: labID, Skip: win.Skip, Limit: win.Limit})
			},
			func(v models.ItemsPublic) int { return len(v.Data) })
		return err
	})
	g.Go(func() error {
		var err error
		access, err = authz.LoadLabAccess(gctx, r, api, h.Cache, labID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.FragmentBackend(w, r, "items: list", err)
		return
	}

	canEdit := access.CanEditItems()
	rows := make([]itemRow, 0, len(res.Data))
	for _, it := range res.Data {
		rows = append(rows, newItemRow(labID, it, canEdit))
	}
	templates.RenderSnippet(w, "items_table", listData{Rows: rows, ListURL: listPath(labID), Paging: pg})
}

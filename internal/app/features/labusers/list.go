// internal/app/features/labusers/list.go
package labusers

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
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type listPageData struct {
	viewdata.BaseVM
	Lab           models.LabPublic
	ListURL       string
	CanAddMembers bool
	Page          int
	Skeleton      paging.Skeleton
}

type memberCard struct {
	Member   models.UserLabPublic
	ShowMenu bool
	Menu     entityref.Menu
}

type listData struct {
	Cards   []memberCard
	ListURL string
	Paging  paging.Result
}

// ServeList renders the lab's members page; the cards load from
// ServeListFragment.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "lab_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	access, err := authz.LoadLabAccess(ctx, r, viewer.Client(r, h.API), h.Cache, labID)
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "labusers: load lab", err, "/labs")
		return
	}

	templates.Render(w, r, "labusers_list", listPageData{
		BaseVM:        viewdata.NewBaseVM(w, r, access.Lab.Title()+" Members", "/labs/"+labID+"/items"),
		Lab:           access.Lab,
		ListURL:       listPath(labID),
		CanAddMembers: access.CanAddMembers(),
		Page:          paging.ParsePage(r),
		Skeleton:      paging.NewSkeleton(0),
	})
}

// ServeListFragment renders one page of member cards.
//
// Each card decides its own action menu from a fresh read of the viewer's
// membership in the lab. The reads run concurrently and are never cached,
// so a permission change shows on the next render. A failed read hides
// that card's menu only.
func (h *Handler) ServeListFragment(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "lab_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	api := viewer.Client(r, h.API)

	key := querycache.Key{Entity: querycache.Members, Viewer: viewer.ID(r), Scope: labID, Page: paging.ParsePage(r)}
	res, pg, err := querycache.FetchPage(ctx, h.Cache, key,
		func(ctx context.Context, win paging.Window) (models.UserLabsPublic, error) {
			return api.ViewLabUsers(ctx, apiclient.ViewLabUsersParams{LabID: labID, Skip: win.Skip, Limit: win.Limit})
		},
		func(v models.UserLabsPublic) int { return len(v.Data) })
	if err != nil {
		h.ErrLog.FragmentBackend(w, r, "labusers: list", err)
		return
	}

	cards := make([]memberCard, len(res.Data))
	var g errgroup.Group
	g.SetLimit(cardFetchLimit)
	for i, m := range res.Data {
		cards[i] = memberCard{
			Member: m,
			Menu:   entityref.MenuFor(entityref.MembershipRef{LabID: labID, UserID: m.UserID}),
		}
		g.Go(func() error {
			mine, err := h.viewerMembership(ctx, r, api, labID)
			if err != nil {
				h.Log.Warn("labusers: viewer permissions",
					zap.String("lab_id", labID), zap.String("member_id", m.UserID), zap.Error(err))
				return nil
			}
			cards[i].ShowMenu = authz.CanEditMemberCard(mine)
			return nil
		})
	}
	_ = g.Wait()

	templates.RenderSnippet(w, "labusers_cards", listData{Cards: cards, ListURL: listPath(labID), Paging: pg})
}

// viewerMembership reads the viewer's own membership in labID, nil when
// they are not a member or the backend hides it.
func (h *Handler) viewerMembership(ctx context.Context, r *http.Request, api *apiclient.Client, labID string) (*models.UserLabPublic, error) {
	m, err := api.ViewUserInLab(ctx, apiclient.MembershipParams{LabID: labID, UserID: viewer.ID(r)})
	switch {
	case apiclient.IsStatus(err, http.StatusNotFound), apiclient.IsStatus(err, http.StatusForbidden):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &m, nil
}

package authz

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// LoadLabAccess reads the lab and the viewer's own membership in it
// concurrently, both through the cache. A viewer who is not a member gets a
// nil Membership; any other failure, including the lab itself being
// missing or hidden, is returned.
func LoadLabAccess(ctx context.Context, r *http.Request, api *apiclient.Client, cache *querycache.Cache, labID string) (LabAccess, error) {
	var viewerID string
	if u, ok := auth.CurrentUser(r); ok {
		viewerID = u.ID
	}

	var (
		lab        models.LabPublic
		membership *models.UserLabPublic
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lab, err = querycache.Fetch(gctx, cache,
			querycache.Key{Entity: querycache.Labs, Viewer: viewerID, Scope: labID},
			func(ctx context.Context) (models.LabPublic, error) {
				return api.ReadLab(ctx, apiclient.LabIDParams{LabID: labID})
			})
		return err
	})
	g.Go(func() error {
		if viewerID == "" {
			return nil
		}
		m, err := querycache.Fetch(gctx, cache,
			querycache.Key{Entity: querycache.Members, Viewer: viewerID, Scope: labID + "/self"},
			func(ctx context.Context) (*models.UserLabPublic, error) {
				m, err := api.ViewUserInLab(ctx, apiclient.MembershipParams{LabID: labID, UserID: viewerID})
				switch {
				case apiclient.IsStatus(err, http.StatusNotFound), apiclient.IsStatus(err, http.StatusForbidden):
					return nil, nil
				case err != nil:
					return nil, err
				}
				return &m, nil
			})
		membership = m
		return err
	})
	if err := g.Wait(); err != nil {
		return LabAccess{}, err
	}
	return NewLabAccess(r, lab, membership), nil
}

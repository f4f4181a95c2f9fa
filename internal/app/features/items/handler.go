// internal/app/features/items/handler.go
package items

import (
	"net/http"
	"net/url"

	"github.com/dalemusser/labhub/internal/app/features/actions"
	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves one lab's inventory.
type Handler struct {
	API     *apiclient.Client
	Cache   *querycache.Cache
	Actions *actions.Handler
	SM      *auth.SessionManager
	Audit   *auditlog.Logger
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(api *apiclient.Client, cache *querycache.Cache, act *actions.Handler, sm *auth.SessionManager,
	audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		API:     api,
		Cache:   cache,
		Actions: act,
		SM:      sm,
		Audit:   audit,
		ErrLog:  errLog,
		Log:     logger,
	}
}

func itemRef(r *http.Request) entityref.Ref {
	return entityref.ItemRef{LabID: chi.URLParam(r, "lab_id"), ItemID: chi.URLParam(r, "item_id")}
}

// listPath is the lab's inventory page.
func listPath(labID string) string {
	return "/labs/" + url.PathEscape(labID) + "/items"
}

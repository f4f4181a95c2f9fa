// internal/app/features/users/handler.go
package users

import (
	"net/http"

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

// Handler serves the superuser account administration screens.
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

// userRef reads the {user_id} route param.
func userRef(r *http.Request) entityref.Ref {
	return entityref.UserRef{UserID: chi.URLParam(r, "user_id")}
}

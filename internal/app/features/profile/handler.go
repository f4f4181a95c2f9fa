// internal/app/features/profile/handler.go
package profile

import (
	"github.com/dalemusser/labhub/internal/app/features/actions"
	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own account pages.
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

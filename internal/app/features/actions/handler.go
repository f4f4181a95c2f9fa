// internal/app/features/actions/handler.go
package actions

import (
	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"go.uber.org/zap"
)

// Handler serves the delete confirmation modal and performs confirmed
// deletes for every record kind. Features mount it on their own paths.
type Handler struct {
	API     *apiclient.Client
	Cache   *querycache.Cache
	Confirm *Confirmer
	SM      *auth.SessionManager
	Audit   *auditlog.Logger
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

// NewHandler constructs the actions handler.
func NewHandler(api *apiclient.Client, cache *querycache.Cache, confirm *Confirmer, sm *auth.SessionManager,
	audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		API:     api,
		Cache:   cache,
		Confirm: confirm,
		SM:      sm,
		Audit:   audit,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// internal/app/features/labusers/handler.go
package labusers

import (
	"net/url"

	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"go.uber.org/zap"
)

// cardFetchLimit bounds the concurrent per-card permission reads.
const cardFetchLimit = 4

// Handler serves a lab's member cards and the add-member and
// edit-permissions modals. Memberships cannot be removed from the console.
type Handler struct {
	API    *apiclient.Client
	Cache  *querycache.Cache
	SM     *auth.SessionManager
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(api *apiclient.Client, cache *querycache.Cache, sm *auth.SessionManager,
	audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		API:    api,
		Cache:  cache,
		SM:     sm,
		Audit:  audit,
		ErrLog: errLog,
		Log:    logger,
	}
}

func listPath(labID string) string {
	return "/labs/" + url.PathEscape(labID) + "/users"
}

func editPath(labID, userID string) string {
	return listPath(labID) + "/" + url.PathEscape(userID) + "/edit"
}

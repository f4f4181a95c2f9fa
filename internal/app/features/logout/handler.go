// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/navigation"
	"github.com/dalemusser/labhub/internal/app/system/viewer"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      audit,
	}
}

// HandleLogout handles POST /logout. The backend token is stateless, so
// signing out only drops it from the session cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, viewer.Actor(r))
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	h.SessionMgr.AddFlash(w, r, auth.Flash{Kind: auth.FlashInfo, Title: "Signed out", Message: "You have been logged out."})

	// HTMX gets HX-Redirect so the whole page navigates.
	navigation.Redirect(w, r, "/login")
}

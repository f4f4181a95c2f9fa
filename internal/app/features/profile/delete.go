package profile

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/features/actions"
	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/app/system/navigation"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewer"
	"go.uber.org/zap"
)

const deletePath = "/profile/delete"

func selfRef(r *http.Request) entityref.UserRef {
	return entityref.UserRef{UserID: viewer.ID(r)}
}

// ServeDeleteConfirm renders the confirmation modal for deleting the
// signed-in account.
func (h *Handler) ServeDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	ref := selfRef(r)
	h.Actions.RenderConfirm(w, r, ref, actions.Prompt{
		Label:     "Delete My Account",
		Warning:   entityref.DeleteWarning(ref),
		DeleteURL: deletePath,
		Return:    "/profile",
	})
}

// HandleDelete deletes the signed-in account after confirmation and signs
// the session out.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "delete me: parse form", err, "Invalid form submission.")
		return
	}
	ref := selfRef(r)
	if err := h.Actions.Confirm.Check(ref, r.PostForm.Get("confirm")); err != nil {
		h.ErrLog.HTMXLogBadRequest(w, r, "delete me: confirmation rejected", err, "The delete was not confirmed.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := viewer.Actor(r)
	_, err := viewer.Client(r, h.API).DeleteUserMe(ctx)
	h.Cache.Invalidate(entityref.Collections(ref)...)
	h.Audit.Mutation(ctx, r, actor, audit.EventAccountDeleted, auditlog.Target{Kind: ref.Kind(), ID: ref.UserID}, err)
	if err != nil {
		h.ErrLog.FlashBackend(w, r, "delete me failed", err, "/profile")
		return
	}

	h.Log.Info("account deleted", zap.String("user_id", ref.UserID))
	if err := h.SM.SignOut(w, r); err != nil {
		h.Log.Warn("delete me: sign out", zap.Error(err))
	}
	h.SM.Success(w, r, "Your account was deleted.")
	navigation.Redirect(w, r, "/login")
}

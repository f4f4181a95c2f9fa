// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/forms"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/labhub/internal/app/system/viewer"
	"github.com/dalemusser/labhub/internal/domain/models"
	"go.uber.org/zap"
)

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	User models.UserPublic

	// Details form
	Draft    forms.ProfileDraft
	Original forms.ProfileDraft
	Error    string
	Errors   forms.FieldErrors

	// Password form
	PasswordError  string
	PasswordErrors forms.FieldErrors
}

// ServeProfile renders the user's profile page.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	me, err := viewer.Client(r, h.API).ReadUserMe(ctx)
	if err != nil {
		h.ErrLog.Backend(w, r, "profile: read me", err, "/")
		return
	}
	orig := forms.ProfileDraftFrom(me)
	h.render(w, r, http.StatusOK, profileData{User: me, Draft: orig, Original: orig})
}

// HandleUpdate handles POST /profile.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}
	var d forms.ProfileDraft
	d.FromForm(r.PostForm)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	api := viewer.Client(r, h.API)

	me, err := api.ReadUserMe(ctx)
	if err != nil {
		h.ErrLog.Backend(w, r, "profile: read me", err, "/")
		return
	}
	orig := forms.ProfileDraftFrom(me)
	data := profileData{User: me, Draft: d, Original: orig}

	if d.Equal(orig) {
		h.SM.AddFlash(w, r, auth.Flash{Kind: auth.FlashInfo, Title: "Profile", Message: "No changes to save."})
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.render(w, r, http.StatusOK, data)
		return
	}

	updated, err := api.UpdateUserMe(ctx, apiclient.UpdateUserMeParams{Body: d.Update()})
	h.Cache.Invalidate(querycache.Users, querycache.Members)
	h.Audit.Mutation(ctx, r, viewer.Actor(r), audit.EventProfileUpdated,
		auditlog.Target{Kind: "user", ID: me.UserID}, err)
	if err != nil {
		if msg, fe, ok := forms.FromAPIError(err); ok {
			data.Error, data.Errors = msg, fe
			h.render(w, r, http.StatusOK, data)
			return
		}
		h.ErrLog.FlashBackend(w, r, "profile: update me", err, "/profile")
		return
	}

	if err := h.SM.UpdateUser(w, r, updated.DisplayName(), updated.Email); err != nil {
		h.Log.Warn("profile: refresh session", zap.Error(err))
	}
	h.SM.Success(w, r, "Your profile was updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleChangePassword handles POST /profile/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}
	var d forms.PasswordDraft
	d.FromForm(r.PostForm)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	api := viewer.Client(r, h.API)

	me, err := api.ReadUserMe(ctx)
	if err != nil {
		h.ErrLog.Backend(w, r, "profile: read me", err, "/")
		return
	}
	orig := forms.ProfileDraftFrom(me)
	data := profileData{User: me, Draft: orig, Original: orig}

	if errs := d.Validate(); errs.Any() {
		data.PasswordErrors = errs
		h.render(w, r, http.StatusOK, data)
		return
	}

	_, err = api.UpdatePasswordMe(ctx, apiclient.UpdatePasswordMeParams{Body: d.Body()})
	h.Audit.PasswordChanged(ctx, r, viewer.Actor(r), err)
	if err != nil {
		if msg, fe, ok := forms.FromAPIError(err); ok {
			data.PasswordError, data.PasswordErrors = msg, fe
			h.render(w, r, http.StatusOK, data)
			return
		}
		h.ErrLog.FlashBackend(w, r, "profile: change password", err, "/profile")
		return
	}

	h.SM.Success(w, r, "Your password was changed.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data profileData) {
	data.BaseVM = viewdata.NewBaseVM(w, r, "Profile", "/labs")
	viewdata.RenderStatus(w, r, status, "profile", data)
}

package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/forms"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// recoverySentMsg is shown whether or not the account exists.
const recoverySentMsg = "If an account exists for that email, a password recovery link is on its way."

type recoverFormData struct {
	viewdata.BaseVM
	Email  string
	Notice string
	Error  string
	Errors forms.FieldErrors
}

type resetFormData struct {
	viewdata.BaseVM
	Token  string
	Error  string
	Errors forms.FieldErrors
}

// ServeRecover handles GET /password-recovery.
func (h *Handler) ServeRecover(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "password_recover", recoverFormData{
		BaseVM: viewdata.NewBaseVM(w, r, "Recover password", "/login"),
	})
}

// HandleRecover handles POST /password-recovery.
func (h *Handler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/password-recovery")
		return
	}

	var d forms.RecoverDraft
	d.FromForm(r.PostForm)
	data := recoverFormData{Email: d.Email}

	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderRecover(w, r, http.StatusOK, data)
		return
	}
	if ok, reason := h.Limiter.Check(r, d.Email); !ok {
		data.Error = reason
		h.renderRecover(w, r, http.StatusTooManyRequests, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := h.API.RecoverPassword(ctx, apiclient.RecoverPasswordParams{Email: d.Email})
	h.Audit.PasswordRecoveryRequested(ctx, r, d.Email, err)
	switch {
	case err == nil, apiclient.IsStatus(err, http.StatusNotFound):
		data.Notice = recoverySentMsg
		h.renderRecover(w, r, http.StatusOK, data)
	default:
		h.Log.Error("password recovery failed", zap.Error(err))
		data.Error = unavailableMsg
		h.renderRecover(w, r, http.StatusBadGateway, data)
	}
}

func (h *Handler) renderRecover(w http.ResponseWriter, r *http.Request, status int, data recoverFormData) {
	data.BaseVM = viewdata.NewBaseVM(w, r, "Recover password", "/login")
	viewdata.RenderStatus(w, r, status, "password_recover", data)
}

// ServeReset handles GET /reset-password?token=...
func (h *Handler) ServeReset(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "password_reset", resetFormData{
		BaseVM: viewdata.NewBaseVM(w, r, "Reset password", "/login"),
		Token:  r.URL.Query().Get("token"),
	})
}

// HandleReset handles POST /reset-password.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/reset-password")
		return
	}

	var d forms.ResetPasswordDraft
	d.FromForm(r.PostForm)
	data := resetFormData{Token: d.Token}

	if errs := d.Validate(); errs.Any() {
		data.Errors = errs
		h.renderReset(w, r, http.StatusOK, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := h.API.ResetPassword(ctx, apiclient.ResetPasswordParams{Body: d.Body()})
	h.Audit.PasswordReset(ctx, r, err)
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status < http.StatusInternalServerError {
			data.Error = apiErr.Message()
			data.Errors = forms.FieldErrors{}.Merge(apiErr.FieldErrors())
			h.renderReset(w, r, http.StatusOK, data)
			return
		}
		h.Log.Error("password reset failed", zap.Error(err))
		data.Error = unavailableMsg
		h.renderReset(w, r, http.StatusBadGateway, data)
		return
	}

	h.SM.Success(w, r, "Your password was reset. Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderReset(w http.ResponseWriter, r *http.Request, status int, data resetFormData) {
	data.BaseVM = viewdata.NewBaseVM(w, r, "Reset password", "/login")
	viewdata.RenderStatus(w, r, status, "password_reset", data)
}

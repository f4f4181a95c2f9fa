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

type signupFormData struct {
	viewdata.BaseVM
	Draft  forms.SignupDraft
	Error  string
	Errors forms.FieldErrors
}

// ServeSignup handles GET /signup.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM: viewdata.NewBaseVM(w, r, "Sign up", "/login"),
	})
}

// HandleSignup handles POST /signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	var d forms.SignupDraft
	d.FromForm(r.PostForm)
	if errs := d.Validate(); errs.Any() {
		h.renderSignup(w, r, http.StatusOK, d, "", errs)
		return
	}
	if ok, reason := h.Limiter.Check(r, d.Email); !ok {
		h.renderSignup(w, r, http.StatusTooManyRequests, d, reason, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.API.RegisterUser(ctx, apiclient.RegisterUserParams{Body: d.Body()})
	h.Audit.Signup(ctx, r, u.UserID, d.Email, err)
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status < http.StatusInternalServerError {
			h.renderSignup(w, r, http.StatusOK, d, apiErr.Message(), forms.FieldErrors{}.Merge(apiErr.FieldErrors()))
			return
		}
		h.Log.Error("signup failed", zap.Error(err))
		h.renderSignup(w, r, http.StatusBadGateway, d, unavailableMsg, nil)
		return
	}

	h.SM.Success(w, r, "Your account was created. Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, status int, d forms.SignupDraft, msg string, errs forms.FieldErrors) {
	// Never echo passwords back into the form.
	d.Password, d.ConfirmPassword = "", ""
	viewdata.RenderStatus(w, r, status, "signup", signupFormData{
		BaseVM: viewdata.NewBaseVM(w, r, "Sign up", "/login"),
		Draft:  d,
		Error:  msg,
		Errors: errs,
	})
}

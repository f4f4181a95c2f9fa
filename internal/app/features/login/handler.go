// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/forms"
	"github.com/dalemusser/labhub/internal/app/system/ratelimit"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// DefaultReturn is where a successful login lands without a return param.
const DefaultReturn = "/labs"

const unavailableMsg = "Sign-in is unavailable right now. Please try again shortly."

type Handler struct {
	API     *apiclient.Client
	SM      *auth.SessionManager
	Audit   *auditlog.Logger
	ErrLog  *uierrors.ErrorLogger
	Limiter *ratelimit.LoginLimiter
	Log     *zap.Logger
}

func NewHandler(
	api *apiclient.Client,
	sm *auth.SessionManager,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	limiter *ratelimit.LoginLimiter,
	logger *zap.Logger,
) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Handler{
		API:     api,
		SM:      sm,
		Audit:   audit,
		ErrLog:  errLog,
		Limiter: limiter,
		Log:     logger,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Email     string
	ReturnURL string
	Error     string
	Errors    forms.FieldErrors
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := auth.SafeReturn(r.URL.Query().Get("return"), DefaultReturn)
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, ret, http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, "Log in", "/"),
		ReturnURL: ret,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	var d forms.LoginDraft
	d.FromForm(r.PostForm)
	ret := auth.SafeReturn(strings.TrimSpace(r.PostForm.Get("return")), DefaultReturn)

	if errs := d.Validate(); errs.Any() {
		h.renderLogin(w, r, http.StatusOK, d.Username, ret, "", errs)
		return
	}
	if ok, reason := h.Limiter.Check(r, d.Username); !ok {
		h.Log.Warn("login rate limited", zap.String("email", d.Username), zap.String("ip", ratelimit.ClientIP(r)))
		h.renderLogin(w, r, http.StatusTooManyRequests, d.Username, ret, reason, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tok, err := h.API.LoginAccessToken(ctx, apiclient.LoginParams{Username: d.Username, Password: d.Password})
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status < http.StatusInternalServerError {
			h.Audit.LoginFailed(ctx, r, d.Username, apiErr.Message())
			h.renderLogin(w, r, http.StatusOK, d.Username, ret, apiErr.Message(), forms.FieldErrors{}.Merge(apiErr.FieldErrors()))
			return
		}
		h.Log.Error("login: access token", zap.Error(err))
		h.renderLogin(w, r, http.StatusBadGateway, d.Username, ret, unavailableMsg, nil)
		return
	}

	claims, err := apiclient.ParseTokenClaims(tok.AccessToken)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: parse token", err, unavailableMsg, "/login")
		return
	}
	me, err := h.API.WithToken(tok.AccessToken).TestToken(ctx)
	if err != nil {
		h.Log.Error("login: test token", zap.Error(err))
		h.renderLogin(w, r, http.StatusBadGateway, d.Username, ret, unavailableMsg, nil)
		return
	}

	su := auth.SessionUser{
		ID:          me.UserID,
		Name:        me.DisplayName(),
		Email:       me.Email,
		IsSuperuser: me.IsSuperuser,
		Token:       tok.AccessToken,
		ExpiresAt:   claims.ExpiresAt,
	}
	if su.ID == "" {
		su.ID = claims.Subject
	}
	if err := h.SM.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Could not start your session.", "/login")
		return
	}

	h.Limiter.ResetEmail(d.Username)
	h.Audit.LoginSuccess(ctx, r, auditlog.Actor{ID: su.ID, Email: su.Email})
	h.Log.Info("user signed in", zap.String("user_id", su.ID), zap.Bool("superuser", su.IsSuperuser))

	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, ret, msg string, errs forms.FieldErrors) {
	viewdata.RenderStatus(w, r, status, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, "Log in", "/"),
		Email:     email,
		ReturnURL: ret,
		Error:     msg,
		Errors:    errs,
	})
}

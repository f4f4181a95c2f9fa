// internal/app/features/errors/logger.go
package errors

import (
	"errors"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/requestid"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// GenericMessage is shown when the backend gave no detail.
const GenericMessage = "An error occurred."

// ErrorLogger logs a handler failure with request context and answers the
// browser. Full-page handlers use the Log* methods; modal and form posts use
// the HTMX*/Flash* methods, which queue a toast and redirect.
type ErrorLogger struct {
	log *zap.Logger
	sm  *auth.SessionManager
}

// NewErrorLogger builds an ErrorLogger. sm may be nil in tests; flashes and
// sign-out are then skipped.
func NewErrorLogger(logger *zap.Logger, sm *auth.SessionManager) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger, sm: sm}
}

func (el *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		requestid.Field(r.Context()),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}

// LogServerError logs at Error and renders a 500 page.
func (el *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Error(logMsg, el.fields(r, err)...)
	RenderError(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadRequest logs at Warn and renders a 400 page.
func (el *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Warn(logMsg, el.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs at Warn and renders a 403 page.
func (el *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Warn(logMsg, el.fields(r, err)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMXLogBadRequest answers an htmx request the console refused to send.
// The status is 400 and nothing is swapped in.
func (el *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	el.log.Warn(logMsg, el.fields(r, err)...)
	if navigation.IsHTMX(r) {
		w.Header().Set("HX-Reswap", "none")
		http.Error(w, userMsg, http.StatusBadRequest)
		return
	}
	RenderBadRequest(w, r, userMsg, "")
}

// HTMXLogServerError logs at Error, queues an error toast and sends the
// browser back to backURL.
func (el *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Error(logMsg, el.fields(r, err)...)
	el.flashAndRedirect(w, r, userMsg, backURL)
}

// Backend renders the outcome of a failed backend read for a full page.
//
//   - missing identifiers: 400, no backend call was made
//   - 401: the session is cleared and the browser sent to login
//   - 403 and 404: the matching page with the backend's detail
//   - anything else: 502 with the backend's detail or a generic message
func (el *ErrorLogger) Backend(w http.ResponseWriter, r *http.Request, logMsg string, err error, backURL string) {
	switch {
	case IsPrecondition(err):
		el.LogBadRequest(w, r, logMsg, err, "The request is missing a required identifier.", backURL)
	case apiclient.IsStatus(err, http.StatusUnauthorized):
		el.SessionRejected(w, r, err)
	case apiclient.IsStatus(err, http.StatusForbidden):
		el.LogForbidden(w, r, logMsg, err, UserMessage(err), backURL)
	case apiclient.IsStatus(err, http.StatusNotFound):
		el.log.Info(logMsg, el.fields(r, err)...)
		RenderNotFound(w, r, UserMessage(err), backURL)
	default:
		el.log.Error(logMsg, el.fields(r, err)...)
		RenderError(w, r, http.StatusBadGateway, UserMessage(err), backURL)
	}
}

// FlashBackend reports a failed mutation: an error toast and a redirect to
// backURL, or the login page when the backend rejected the token.
func (el *ErrorLogger) FlashBackend(w http.ResponseWriter, r *http.Request, logMsg string, err error, backURL string) {
	switch {
	case apiclient.IsStatus(err, http.StatusUnauthorized):
		el.SessionRejected(w, r, err)
		return
	case IsPrecondition(err):
		el.log.Warn(logMsg, el.fields(r, err)...)
	default:
		el.log.Error(logMsg, el.fields(r, err)...)
	}
	el.flashAndRedirect(w, r, UserMessage(err), backURL)
}

// FragmentBackend reports a failed load of an HTMX list fragment. The
// message is swapped into the list region in place of rows; a rejected
// token still sends the browser to login.
func (el *ErrorLogger) FragmentBackend(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	if apiclient.IsStatus(err, http.StatusUnauthorized) {
		el.SessionRejected(w, r, err)
		return
	}
	el.log.Error(logMsg, el.fields(r, err)...)
	templates.RenderSnippet(w, "error_fragment", UserMessage(err))
}

// SessionRejected clears the session after the backend refused its token
// and sends the browser to login.
func (el *ErrorLogger) SessionRejected(w http.ResponseWriter, r *http.Request, err error) {
	el.log.Info("backend rejected session token", el.fields(r, err)...)
	if el.sm != nil {
		if serr := el.sm.SignOut(w, r); serr != nil {
			el.log.Warn("sign out failed", zap.Error(serr))
		}
		el.sm.AddFlash(w, r, auth.Flash{Kind: auth.FlashInfo, Title: "Signed out", Message: "Your session has expired. Please log in again."})
	}
	auth.RedirectToLogin(w, r)
}

func (el *ErrorLogger) flashAndRedirect(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if el.sm != nil {
		el.sm.Error(w, r, msg)
	}
	if backURL == "" {
		backURL = "/"
	}
	navigation.Redirect(w, r, backURL)
}

// IsPrecondition reports whether err was raised before any backend call.
func IsPrecondition(err error) bool {
	return errors.Is(err, apiclient.ErrMissingParam) || errors.Is(err, entityref.ErrMissingID)
}

// UserMessage is the toast text for err: the backend's own detail when it
// sent one, otherwise GenericMessage.
func UserMessage(err error) string {
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return GenericMessage
}

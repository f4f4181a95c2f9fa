package errors_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/labhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func apiErr(status int, detail string) error {
	return fmt.Errorf("wrapped: %w", &apiclient.APIError{Endpoint: "labs.read_lab", Status: status, Detail: detail})
}

func newLogger(t *testing.T) (*uierrors.ErrorLogger, *observer.ObservedLogs) {
	t.Helper()
	testutil.BootTemplates(t)
	core, logs := observer.New(zapcore.DebugLevel)
	return uierrors.NewErrorLogger(zap.New(core), nil), logs
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend detail", apiErr(http.StatusConflict, "Lab already exists"), "Lab already exists"},
		{"no detail", apiErr(http.StatusInternalServerError, ""), uierrors.GenericMessage},
		{"transport", fmt.Errorf("dial tcp: refused"), uierrors.GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uierrors.UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPrecondition(t *testing.T) {
	if !uierrors.IsPrecondition(fmt.Errorf("x: %w", apiclient.ErrMissingParam)) {
		t.Error("missing param should be a precondition failure")
	}
	if !uierrors.IsPrecondition(entityref.ErrMissingID) {
		t.Error("missing entity id should be a precondition failure")
	}
	if uierrors.IsPrecondition(apiErr(http.StatusNotFound, "")) {
		t.Error("a backend error is not a precondition failure")
	}
}

func TestBackend(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantLoc    string
	}{
		{"missing id", fmt.Errorf("read: %w", apiclient.ErrMissingParam), http.StatusBadRequest, "missing a required identifier", ""},
		{"rejected token", apiErr(http.StatusUnauthorized, "Could not validate credentials"), http.StatusSeeOther, "", "/login?return=%2Flabs%2Fl-1"},
		{"forbidden", apiErr(http.StatusForbidden, "Not enough permissions"), http.StatusForbidden, "Not enough permissions", ""},
		{"not found", apiErr(http.StatusNotFound, "Lab not found"), http.StatusNotFound, "Lab not found", ""},
		{"server error", apiErr(http.StatusInternalServerError, ""), http.StatusBadGateway, uierrors.GenericMessage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, _ := newLogger(t)
			rec := testutil.NewRecorder()
			req := testutil.NewRequest(http.MethodGet, "/labs/l-1")
			req.Header.Set("Accept", "text/html")

			el.Backend(rec, req, "load lab", tt.err, "/labs")

			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantBody != "" {
				rec.AssertContains(t, tt.wantBody)
			}
			if tt.wantLoc != "" {
				rec.AssertRedirect(t, tt.wantLoc)
			}
		})
	}
}

func TestFlashBackend(t *testing.T) {
	el, logs := newLogger(t)
	user := &auth.SessionUser{ID: "u-7", Email: "ada@example.com"}

	rec := testutil.NewRecorder()
	req := testutil.HTMX(testutil.NewAuthenticatedRequest(http.MethodPost, "/labs/l-1/edit", user))
	el.FlashBackend(rec, req, "update lab", apiErr(http.StatusInternalServerError, "boom"), "/labs")

	if got := rec.Header().Get("HX-Redirect"); got != "/labs" {
		t.Errorf("HX-Redirect = %q, want /labs", got)
	}

	entries := logs.FilterMessage("update lab").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("level = %v, want error", entries[0].Level)
	}
	if got := entries[0].ContextMap()["user_id"]; got != "u-7" {
		t.Errorf("user_id field = %v", got)
	}
}

func TestFlashBackend_PreconditionLogsAtWarn(t *testing.T) {
	el, logs := newLogger(t)
	rec := testutil.NewRecorder()
	req := testutil.NewRequest(http.MethodPost, "/labs/l-1/delete")

	el.FlashBackend(rec, req, "delete lab", entityref.ErrMissingID, "/labs")

	rec.AssertStatus(t, http.StatusSeeOther)
	rec.AssertRedirect(t, "/labs")
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("warn entries = %d, want 1", n)
	}
}

func TestFragmentBackend(t *testing.T) {
	el, _ := newLogger(t)

	rec := testutil.NewRecorder()
	req := testutil.HTMX(testutil.NewRequest(http.MethodGet, "/labs/list?page=2"))
	el.FragmentBackend(rec, req, "list labs", apiErr(http.StatusBadGateway, "Backend is down"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `role="alert"`)
	rec.AssertContains(t, "Backend is down")
}

func TestFragmentBackend_RejectedToken(t *testing.T) {
	el, _ := newLogger(t)

	rec := testutil.NewRecorder()
	req := testutil.HTMX(testutil.NewRequest(http.MethodGet, "/labs/list"))
	el.FragmentBackend(rec, req, "list labs", apiErr(http.StatusUnauthorized, ""))

	rec.AssertStatus(t, http.StatusUnauthorized)
	if got := rec.Header().Get("HX-Redirect"); !strings.HasPrefix(got, "/login?return=") {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestSessionRejected_ClearsSession(t *testing.T) {
	testutil.BootTemplates(t)
	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	el := uierrors.NewErrorLogger(zap.NewNop(), sm)

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/profile", &auth.SessionUser{ID: "u-1"})
	req.Header.Set("Accept", "text/html")
	el.SessionRejected(rec, req, apiErr(http.StatusUnauthorized, ""))

	rec.AssertStatus(t, http.StatusSeeOther)
	rec.AssertRedirect(t, "/login?return=%2Fprofile")
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected the session cookie to be rewritten")
	}
}

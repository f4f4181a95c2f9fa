package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/labhub/internal/app/features/health"
	"github.com/dalemusser/labhub/internal/testutil"
	"go.uber.org/zap"
)

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, body
}

func TestServe_BackendUpWithoutDatabase(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	rec, body := serve(t, health.NewHandler(nil, fb.Client(t), zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body.Status != "ok" || body.Database != "disabled" || body.Backend != "ok" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestServe_BackendDown(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Fail("GET /api/v1/utils/health-check/", http.StatusServiceUnavailable, "maintenance")
	rec, body := serve(t, health.NewHandler(nil, fb.Client(t), zap.NewNop()))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if body.Status != "error" || body.Backend != "unavailable" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fb := testutil.NewFakeBackend(t)
	rec, body := serve(t, health.NewHandler(db.Client(), fb.Client(t), zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body.Database != "connected" {
		t.Errorf("database: got %q, want %q", body.Database, "connected")
	}
}

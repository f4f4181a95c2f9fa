package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client // nil when the audit store is disabled
	API    *apiclient.Client
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, backend
// client and logger.
func NewHandler(client *mongo.Client, api *apiclient.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		API:    api,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"ok" }
//
// Without Mongo configured "database" is "disabled". If Mongo or the
// backend health check fails: 503 and
//
//	{ "status":"error", "database":"disconnected", "backend":"ok", "message":"Database unavailable", "error":"…" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "disabled",
		Backend:  "ok",
	}

	var dbErr, apiErr error
	var g errgroup.Group
	if h.Client != nil {
		g.Go(func() error {
			dbErr = h.Client.Ping(ctx, readpref.Primary())
			return nil
		})
	}
	g.Go(func() error {
		apiErr = h.API.HealthCheck(ctx)
		return nil
	})
	_ = g.Wait()

	if h.Client != nil {
		resp.Database = "connected"
	}
	if dbErr != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(dbErr))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = dbErr.Error()
	}
	if apiErr != nil {
		h.Log.Error("health-check: backend unavailable", zap.Error(apiErr))
		resp.Status = "error"
		resp.Backend = "unavailable"
		if resp.Message == "" {
			resp.Message = "Backend unavailable"
			resp.Error = apiErr.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/dalemusser/labhub/internal/app/features/errors"
	"github.com/dalemusser/labhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Source is the read side of the audit store.
type Source interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

type Handler struct {
	Events Source // nil when audit events only go to the log
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs the audit log screen over events, which may be nil
// when no database is configured.
func NewHandler(events Source, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
		ErrLog: errLog,
	}
}

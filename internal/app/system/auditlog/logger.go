// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/labhub/internal/app/system/entityref"
	"github.com/dalemusser/waffle/pantry/requestid"
	"go.uber.org/zap"
)

// Modes accepted by Config fields.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// ValidMode reports whether m is one of the accepted modes.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for login, logout, signup and password events.
	Auth string
	// Admin controls logging for mutations sent to the backend.
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
// A nil store downgrades "all" and "db" to zap only.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// Actor is the signed-in user performing an action.
type Actor struct {
	ID    string
	Email string
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	e.IP = getClientIP(r)
	e.UserAgent = r.UserAgent()
	e.RequestID = requestid.FromRequest(r)
	return e
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.TargetKind != "" {
		fields = append(fields, zap.String("target_kind", event.TargetKind), zap.String("target_id", event.TargetID))
	}
	if event.LabID != "" {
		fields = append(fields, zap.String("lab_id", event.LabID))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog || l.store == nil {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, a Actor) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLoginSuccess,
		ActorID:    a.ID,
		ActorEmail: a.Email,
		Success:    true,
	}))
}

// LoginFailed logs a rejected login. reason is the backend's message.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedEmail, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		ActorEmail:    attemptedEmail,
		Success:       false,
		FailureReason: reason,
	}))
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, a Actor) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLogout,
		ActorID:    a.ID,
		ActorEmail: a.Email,
		Success:    true,
	}))
}

// SessionExpired logs a session dropped because the backend rejected its token.
func (l *Logger) SessionExpired(ctx context.Context, r *http.Request, a Actor) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventSessionExpired,
		ActorID:    a.ID,
		ActorEmail: a.Email,
		Success:    true,
	}))
}

// Signup logs a public registration.
func (l *Logger) Signup(ctx context.Context, r *http.Request, userID, email string, err error) {
	l.Log(ctx, fromRequest(r, outcome(audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventSignup,
		ActorID:    userID,
		ActorEmail: email,
	}, err)))
}

// PasswordChanged logs a self-service password change.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, a Actor, err error) {
	l.Log(ctx, fromRequest(r, outcome(audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventPasswordChanged,
		ActorID:    a.ID,
		ActorEmail: a.Email,
	}, err)))
}

// PasswordRecoveryRequested logs a recovery email request.
func (l *Logger) PasswordRecoveryRequested(ctx context.Context, r *http.Request, email string, err error) {
	l.Log(ctx, fromRequest(r, outcome(audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventPasswordRecoveryRequested,
		ActorEmail: email,
	}, err)))
}

// PasswordReset logs a reset through a recovery token.
func (l *Logger) PasswordReset(ctx context.Context, r *http.Request, err error) {
	l.Log(ctx, fromRequest(r, outcome(audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordReset,
	}, err)))
}

// --- Admin Events ---

// Target is the record a mutation touched.
type Target struct {
	Kind    string
	ID      string
	LabID   string
	Details map[string]string
}

// Mutation logs a create or update sent to the backend. err is the
// backend's answer; nil means it succeeded.
func (l *Logger) Mutation(ctx context.Context, r *http.Request, a Actor, eventType string, t Target, err error) {
	l.Log(ctx, fromRequest(r, outcome(audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		ActorID:    a.ID,
		ActorEmail: a.Email,
		TargetKind: t.Kind,
		TargetID:   t.ID,
		LabID:      t.LabID,
		Details:    t.Details,
	}, err)))
}

// Deleted logs a delete confirmed through the action menu.
func (l *Logger) Deleted(ctx context.Context, r *http.Request, a Actor, ref entityref.Ref, err error) {
	var (
		eventType string
		t         = Target{Kind: ref.Kind()}
	)
	switch ref := ref.(type) {
	case entityref.UserRef:
		eventType, t.ID = audit.EventUserDeleted, ref.UserID
	case entityref.LabRef:
		eventType, t.ID, t.LabID = audit.EventLabDeleted, ref.LabID, ref.LabID
	case entityref.ItemRef:
		eventType, t.ID, t.LabID = audit.EventItemDeleted, ref.ItemID, ref.LabID
	default:
		return
	}
	l.Mutation(ctx, r, a, eventType, t, err)
}

func outcome(e audit.Event, err error) audit.Event {
	e.Success = err == nil
	if err != nil {
		e.FailureReason = err.Error()
	}
	return e
}

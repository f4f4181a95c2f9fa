// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds the console's own settings. Server settings (env,
// log_level, http_port, timeouts, security headers) live in WAFFLE's
// CoreConfig and share the LABHUB_ environment prefix.
type AppConfig struct {
	SiteName string

	// Lab inventory backend
	APIBaseURL string
	APITimeout time.Duration

	// Audit store. A blank MongoURI keeps audit events in the log only.
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration

	CSRFKey    string // exactly 32 bytes
	ConfirmKey string // signs delete confirmation tokens
	ConfirmTTL time.Duration

	// Query cache
	CacheSize int
	CacheTTL  time.Duration

	// Audit modes: all, db, log or off. The per-category keys override
	// AuditLog when set.
	AuditLog      string
	AuditLogAuth  string
	AuditLogAdmin string

	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}

func (c AppConfig) auditMode(override string) string {
	if override != "" {
		return override
	}
	return c.AuditLog
}

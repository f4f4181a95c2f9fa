// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every key when read from the environment,
// e.g. LABHUB_API_BASE_URL or LABHUB_HTTP_PORT.
const EnvPrefix = "LABHUB"

// Development defaults. ValidateConfig refuses them in prod.
const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devCSRFKey    = "dev-only-csrf-key-0123456789abcd"
	devConfirmKey = "dev-only-confirm-key-0123456789ABCDEF"
)

// appConfigKeys defines the configuration keys for LabHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, session_name, etc.
//   - Environment variables: LABHUB_API_BASE_URL, LABHUB_SESSION_NAME, etc.
//   - Command-line flags: --api_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "site_name", Default: "LabHub", Desc: "Name shown in the page header"},

	{Name: "api_base_url", Default: "http://localhost:8000", Desc: "Lab inventory API base URL"},
	{Name: "api_timeout", Default: "15s", Desc: "Per-request timeout for backend calls (e.g., 15s, 1m)"},

	{Name: "mongo_uri", Default: "", Desc: "MongoDB URI for the audit store (blank disables it)"},
	{Name: "mongo_database", Default: "labhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 20, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 2, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (32+ chars in production)"},
	{Name: "session_name", Default: "labhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "8h", Desc: "Session cookie lifetime"},

	{Name: "csrf_key", Default: devCSRFKey, Desc: "CSRF authentication key (exactly 32 bytes)"},
	{Name: "confirm_key", Default: devConfirmKey, Desc: "Delete confirmation signing key (32+ chars in production)"},
	{Name: "confirm_ttl", Default: "10m", Desc: "How long a delete confirmation stays valid"},

	{Name: "cache_size", Default: 512, Desc: "Query cache entries"},
	{Name: "cache_ttl", Default: "5m", Desc: "Query cache entry lifetime"},

	// Audit logging settings
	{Name: "audit_log", Default: auditlog.ModeAll, Desc: "Audit logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_auth", Default: "", Desc: "Audit mode for sign-in events (blank uses audit_log)"},
	{Name: "audit_log_admin", Default: "", Desc: "Audit mode for backend mutations (blank uses audit_log)"},

	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for writes and multi-step operations"},
}

// LoadConfig loads WAFFLE core config and LabHub's app config.
//
// WAFFLE's config.LoadWithAppConfig reads .env, config.{yaml,json,toml},
// LABHUB_* environment variables and flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}
	coreCfg.Env = strings.ToLower(strings.TrimSpace(coreCfg.Env))
	return coreCfg, appConfigFrom(appValues), nil
}

// appConfigFrom converts loaded values. Integers arriving from the
// environment are strings, so they go through cast rather than
// AppConfigValues.Int.
func appConfigFrom(v config.AppConfigValues) AppConfig {
	return AppConfig{
		SiteName: v.String("site_name"),

		APIBaseURL: strings.TrimSpace(v.String("api_base_url")),
		APITimeout: v.Duration("api_timeout", 15*time.Second),

		MongoURI:         strings.TrimSpace(v.String("mongo_uri")),
		MongoDatabase:    v.String("mongo_database"),
		MongoMaxPoolSize: cast.ToUint64(v["mongo_max_pool_size"]),
		MongoMinPoolSize: cast.ToUint64(v["mongo_min_pool_size"]),

		SessionKey:    v.String("session_key"),
		SessionName:   v.String("session_name"),
		SessionDomain: v.String("session_domain"),
		SessionMaxAge: v.Duration("session_max_age", 8*time.Hour),

		CSRFKey:    v.String("csrf_key"),
		ConfirmKey: v.String("confirm_key"),
		ConfirmTTL: v.Duration("confirm_ttl", 10*time.Minute),

		CacheSize: cast.ToInt(v["cache_size"]),
		CacheTTL:  v.Duration("cache_ttl", 5*time.Minute),

		AuditLog:      strings.ToLower(v.String("audit_log")),
		AuditLogAuth:  strings.ToLower(v.String("audit_log_auth")),
		AuditLogAdmin: strings.ToLower(v.String("audit_log_admin")),

		TimeoutShort:  v.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: v.Duration("timeout_medium", 10*time.Second),
	}
}

// ValidateConfig rejects configurations the console cannot run with. Every
// problem is reported, not just the first. WAFFLE has already checked the
// core keys it owns (log level, TLS).
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	switch coreCfg.Env {
	case "dev", "test", "prod":
	default:
		errs = append(errs, fmt.Errorf("env %q must be dev, test or prod", coreCfg.Env))
	}

	if u, err := url.Parse(appCfg.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_base_url %q must be an absolute http(s) URL", appCfg.APIBaseURL))
	}

	if appCfg.MongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
		}
		if appCfg.MongoDatabase == "" {
			errs = append(errs, errors.New("mongo_database is required when mongo_uri is set"))
		}
		if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
			errs = append(errs, fmt.Errorf("mongo_min_pool_size %d exceeds mongo_max_pool_size %d",
				appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize))
		}
	}

	if len(appCfg.CSRFKey) != 32 {
		errs = append(errs, fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey)))
	}
	if appCfg.SessionKey == "" {
		errs = append(errs, errors.New("session_key is required"))
	}
	if appCfg.ConfirmKey == "" {
		errs = append(errs, errors.New("confirm_key is required"))
	}
	if coreCfg.Env == "prod" {
		if len(appCfg.SessionKey) < 32 || appCfg.SessionKey == devSessionKey {
			errs = append(errs, errors.New("session_key must be a private value of 32+ chars in prod"))
		}
		if appCfg.CSRFKey == devCSRFKey {
			errs = append(errs, errors.New("csrf_key must be changed in prod"))
		}
		if len(appCfg.ConfirmKey) < 32 || appCfg.ConfirmKey == devConfirmKey {
			errs = append(errs, errors.New("confirm_key must be a private value of 32+ chars in prod"))
		}
	}

	for name, mode := range map[string]string{
		"audit_log":       appCfg.AuditLog,
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
	} {
		if mode == "" && name != "audit_log" {
			continue
		}
		if !auditlog.ValidMode(mode) {
			errs = append(errs, fmt.Errorf("%s %q must be all, db, log or off", name, mode))
		}
	}

	if appCfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative, got %d", appCfg.CacheSize))
	}
	if appCfg.APITimeout <= 0 {
		errs = append(errs, errors.New("api_timeout must be positive"))
	}

	return errors.Join(errs...)
}

package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// defaultValues returns what the loader yields with nothing set.
func defaultValues() config.AppConfigValues {
	v := make(config.AppConfigValues, len(appConfigKeys))
	for _, k := range appConfigKeys {
		v[k.Name] = k.Default
	}
	return v
}

func TestAppConfigFrom_Defaults(t *testing.T) {
	cfg := appConfigFrom(defaultValues())

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Errorf("APITimeout = %v, want 15s", cfg.APITimeout)
	}
	if cfg.CacheSize != 512 {
		t.Errorf("CacheSize = %d, want 512", cfg.CacheSize)
	}
	if cfg.MongoMaxPoolSize != 20 || cfg.MongoMinPoolSize != 2 {
		t.Errorf("pool = %d/%d, want 20/2", cfg.MongoMaxPoolSize, cfg.MongoMinPoolSize)
	}
	if cfg.MongoURI != "" {
		t.Errorf("MongoURI = %q, want blank", cfg.MongoURI)
	}
	if err := ValidateConfig(devCore(), cfg, zap.NewNop()); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestAppConfigFrom_EnvStrings(t *testing.T) {
	v := defaultValues()
	v["cache_size"] = "64"
	v["mongo_max_pool_size"] = "50"
	v["api_timeout"] = "3s"
	v["audit_log"] = "DB"
	v["api_base_url"] = "  http://env.example:8000 "

	cfg := appConfigFrom(v)
	if cfg.CacheSize != 64 {
		t.Errorf("CacheSize = %d, want 64", cfg.CacheSize)
	}
	if cfg.MongoMaxPoolSize != 50 {
		t.Errorf("MongoMaxPoolSize = %d, want 50", cfg.MongoMaxPoolSize)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %v, want 3s", cfg.APITimeout)
	}
	if cfg.AuditLog != "db" {
		t.Errorf("AuditLog = %q, want db", cfg.AuditLog)
	}
	if cfg.APIBaseURL != "http://env.example:8000" {
		t.Errorf("APIBaseURL = %q, want trimmed", cfg.APIBaseURL)
	}
}

func TestAppConfigFrom_BadDurationFallsBack(t *testing.T) {
	v := defaultValues()
	v["cache_ttl"] = "soon"
	if got := appConfigFrom(v).CacheTTL; got != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m default", got)
	}
}

func devCore() *config.CoreConfig {
	return &config.CoreConfig{Env: "dev", LogLevel: "info"}
}

func TestValidateConfig(t *testing.T) {
	strong := strings.Repeat("s", 40)

	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*AppConfig) {}},
		{name: "unknown env", env: "staging", mutate: func(*AppConfig) {}, wantErr: "env"},
		{name: "relative api url", mutate: func(c *AppConfig) { c.APIBaseURL = "/api" }, wantErr: "api_base_url"},
		{name: "ftp api url", mutate: func(c *AppConfig) { c.APIBaseURL = "ftp://backend" }, wantErr: "api_base_url"},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://db" }, wantErr: "MongoDB URI"},
		{name: "mongo without database", mutate: func(c *AppConfig) {
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = ""
		}, wantErr: "mongo_database"},
		{name: "short csrf key", mutate: func(c *AppConfig) { c.CSRFKey = "short" }, wantErr: "csrf_key"},
		{name: "empty confirm key", mutate: func(c *AppConfig) { c.ConfirmKey = "" }, wantErr: "confirm_key"},
		{name: "bad audit mode", mutate: func(c *AppConfig) { c.AuditLog = "sometimes" }, wantErr: "audit_log"},
		{name: "bad audit override", mutate: func(c *AppConfig) { c.AuditLogAdmin = "db+log" }, wantErr: "audit_log_admin"},
		{name: "negative cache size", mutate: func(c *AppConfig) { c.CacheSize = -1 }, wantErr: "cache_size"},
		{name: "zero api timeout", mutate: func(c *AppConfig) { c.APITimeout = 0 }, wantErr: "api_timeout"},
		{name: "min pool above max", mutate: func(c *AppConfig) {
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoMinPoolSize = 30
		}, wantErr: "mongo_min_pool_size"},
		{name: "prod with dev keys", env: "prod", mutate: func(*AppConfig) {}, wantErr: "session_key"},
		{name: "prod with private keys", env: "prod", mutate: func(c *AppConfig) {
			c.SessionKey = strong
			c.ConfirmKey = strong
			c.CSRFKey = strings.Repeat("x", 32)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := devCore()
			if tt.env != "" {
				core.Env = tt.env
			}
			cfg := appConfigFrom(defaultValues())
			tt.mutate(&cfg)
			err := ValidateConfig(core, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAuditModeOverride(t *testing.T) {
	cfg := AppConfig{AuditLog: "all"}
	if got := cfg.auditMode(""); got != "all" {
		t.Errorf("auditMode(\"\") = %q, want all", got)
	}
	if got := cfg.auditMode("off"); got != "off" {
		t.Errorf("auditMode(off) = %q, want off", got)
	}
}

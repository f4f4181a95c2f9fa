// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	actionsfeature "github.com/dalemusser/labhub/internal/app/features/actions"
	auditlogfeature "github.com/dalemusser/labhub/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/labhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/labhub/internal/app/features/health"
	homefeature "github.com/dalemusser/labhub/internal/app/features/home"
	itemsfeature "github.com/dalemusser/labhub/internal/app/features/items"
	labsfeature "github.com/dalemusser/labhub/internal/app/features/labs"
	labusersfeature "github.com/dalemusser/labhub/internal/app/features/labusers"
	loginfeature "github.com/dalemusser/labhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/labhub/internal/app/features/logout"
	profilefeature "github.com/dalemusser/labhub/internal/app/features/profile"
	usersfeature "github.com/dalemusser/labhub/internal/app/features/users"
	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/labhub/internal/app/system/apiclient"
	"github.com/dalemusser/labhub/internal/app/system/auditlog"
	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/querycache"
	"github.com/dalemusser/labhub/internal/app/system/ratelimit"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/logging"
	"github.com/dalemusser/waffle/metrics"
	wafflemw "github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/requestid"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for WAFFLE.
//
// Shared services are built once here and handed to each feature: the
// backend client, the query cache, the session manager, the audit logger,
// the delete confirmer and the error logger. /health and /metrics sit
// outside CSRF protection; every other route is behind it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	viewdata.Init(appCfg.SiteName, sessionMgr)

	// Initialize and boot the template engine once at startup.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	api, err := apiclient.New(apiclient.Config{
		BaseURL: appCfg.APIBaseURL,
		Timeout: appCfg.APITimeout,
	}, logger.Named("api"))
	if err != nil {
		logger.Error("backend client init failed", zap.Error(err))
		return nil, err
	}

	cache := querycache.New(querycache.Config{
		Size:            appCfg.CacheSize,
		TTL:             appCfg.CacheTTL,
		PrefetchTimeout: timeouts.Medium(),
	}, logger.Named("cache"))
	deps.onShutdown(cache.Close)

	// The audit feature needs a nil interface, not a typed nil, when the
	// store is disabled.
	var (
		auditStore  *audit.Store
		auditEvents auditlogfeature.Source
	)
	if deps.MongoDatabase != nil {
		auditStore = audit.New(deps.MongoDatabase)
		auditEvents = auditStore
	}
	auditLog := auditlog.New(auditStore, logger.Named("audit"), auditlog.Config{
		Auth:  appCfg.auditMode(appCfg.AuditLogAuth),
		Admin: appCfg.auditMode(appCfg.AuditLogAdmin),
	})

	errLog := errorsfeature.NewErrorLogger(logger, sessionMgr)
	confirm := actionsfeature.NewConfirmer([]byte(appCfg.ConfirmKey), appCfg.ConfirmTTL)
	actions := actionsfeature.NewHandler(api, cache, confirm, sessionMgr, auditLog, errLog, logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.Use(requestid.Middleware(requestid.Config{
		Generator:         uuid.NewString,
		TrustProxy:        true,
		SetResponseHeader: true,
	}))
	r.Use(middleware.RealIP)
	r.Use(logging.Recoverer(logger))
	r.Use(wafflemw.CompressFromConfig(coreCfg, nil))
	r.Use(wafflemw.LimitBodySize(coreCfg.MaxRequestBodyBytes))
	r.Use(wafflemw.SecurityHeadersFromConfig(coreCfg))
	r.Use(metrics.HTTPMetrics)

	// Probes and scrapes carry no session and no CSRF token.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, api, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(app chi.Router) {
		if !secure {
			app.Use(plaintextCSRF)
		}
		app.Use(csrf.Protect([]byte(appCfg.CSRFKey),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.RequestHeader("X-CSRF-Token"),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.Warn("csrf check failed",
					zap.String("path", r.URL.Path),
					zap.Error(csrf.FailureReason(r)))
				errorsfeature.RenderForbidden(w, r, "Your form expired. Please reload the page and try again.", "/")
			})),
		))
		app.Use(sessionMgr.LoadSessionUser)
		app.Use(requestLogger(logger))

		app.NotFound(errorsHandler.NotFound)
		app.Get("/", homefeature.NewHandler(logger).ServeRoot)

		// Sign-in pages live at the root: /login, /signup, /password-recovery
		// and /reset-password.
		loginHandler := loginfeature.NewHandler(api, sessionMgr, auditLog, errLog, ratelimit.NewLoginLimiter(), logger)
		app.Mount("/", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
		app.Mount("/logout", logoutfeature.Routes(logoutHandler))

		app.Get("/forbidden", errorsHandler.Forbidden)
		app.Get("/unauthorized", errorsHandler.Unauthorized)

		profileHandler := profilefeature.NewHandler(api, cache, actions, sessionMgr, auditLog, errLog, logger)
		app.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

		usersHandler := usersfeature.NewHandler(api, cache, actions, sessionMgr, auditLog, errLog, logger)
		app.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

		// Items and members are nested under a lab: /labs/{lab_id}/items
		// and /labs/{lab_id}/users.
		labsHandler := labsfeature.NewHandler(api, cache, actions, sessionMgr, auditLog, errLog, logger)
		itemsHandler := itemsfeature.NewHandler(api, cache, actions, sessionMgr, auditLog, errLog, logger)
		membersHandler := labusersfeature.NewHandler(api, cache, sessionMgr, auditLog, errLog, logger)
		app.Mount("/labs", labsfeature.Routes(labsHandler, sessionMgr,
			itemsfeature.Routes(itemsHandler, sessionMgr),
			labusersfeature.Routes(membersHandler, sessionMgr)))

		auditHandler := auditlogfeature.NewHandler(auditEvents, errLog, logger)
		app.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	})

	return r, nil
}

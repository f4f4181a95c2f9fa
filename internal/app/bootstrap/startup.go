// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/labhub/internal/app/resources"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after the database is ready and before the handler is
// built. It applies the operation timeouts and registers the shared
// template set; BuildHandler compiles every set.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	resources.LoadSharedTemplates()
	return nil
}

// OnReady logs where the console is about to listen and which backend it
// talks to.
func OnReady(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	logger.Info("labhub ready",
		zap.String("env", coreCfg.Env),
		zap.Int("http_port", coreCfg.HTTP.HTTPPort),
		zap.String("api_base_url", appCfg.APIBaseURL),
		zap.Bool("audit_db", deps.MongoDatabase != nil))
}

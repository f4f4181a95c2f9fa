// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DBDeps holds the optional audit database and the cleanup work
// registered while the handler was built. The Mongo fields are nil when
// no mongo_uri is configured.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	closers *closers
}

// closers runs registered cleanup funcs in reverse order.
type closers struct {
	mu  sync.Mutex
	fns []func()
}

func newDBDeps() DBDeps {
	return DBDeps{closers: &closers{}}
}

// onShutdown registers fn to run from the Shutdown hook.
func (d DBDeps) onShutdown(fn func()) {
	if d.closers == nil {
		return
	}
	d.closers.mu.Lock()
	d.closers.fns = append(d.closers.fns, fn)
	d.closers.mu.Unlock()
}

func (d DBDeps) runClosers() {
	if d.closers == nil {
		return
	}
	d.closers.mu.Lock()
	fns := d.closers.fns
	d.closers.fns = nil
	d.closers.mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// ConnectDB opens the audit store connection when one is configured.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := newDBDeps()
	if appCfg.MongoURI == "" {
		logger.Info("mongo_uri not set; audit events go to the log only")
		return deps, nil
	}

	pool := wafflemongo.DefaultPoolConfig()
	pool.MaxPoolSize = appCfg.MongoMaxPoolSize
	pool.MinPoolSize = appCfg.MongoMinPoolSize
	if coreCfg.DBConnectTimeout > 0 {
		pool.ConnectTimeout = coreCfg.DBConnectTimeout
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, pool)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", pool.MaxPoolSize),
		zap.Duration("connect_timeout", pool.ConnectTimeout.Round(time.Millisecond)))
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	return deps, nil
}

// EnsureSchema creates the audit collection indexes. WAFFLE bounds ctx by
// index_boot_timeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := audit.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	logger.Debug("audit indexes ensured")
	return nil
}

// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/kinderhub/internal/app/features/health"
	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"github.com/dalemusser/kinderhub/internal/app/system/catalog"
	"github.com/dalemusser/kinderhub/internal/app/system/events"
	"github.com/dalemusser/kinderhub/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const defaultMongoConnectWait = 10 * time.Second

// ConnectDB opens the configured resource store, the optional event
// publisher, and builds the process-wide catalog on top of them.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	switch appCfg.StoreBackend {
	case backendSQLite:
		db, err := resourcestore.OpenSQLite(appCfg.SQLitePath)
		if err != nil {
			return DBDeps{}, fmt.Errorf("open sqlite %q: %w", appCfg.SQLitePath, err)
		}
		deps.SQL = db
		deps.Resources = resourcestore.NewSQL(db)
		deps.Pinger = health.SQLPinger{DB: db}
		logger.Info("resource store: sqlite", zap.String("path", appCfg.SQLitePath))

	default:
		wait := appCfg.MongoConnectWait
		if wait <= 0 {
			wait = defaultMongoConnectWait
		}
		cctx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()

		opts := options.Client().
			ApplyURI(appCfg.MongoURI).
			SetMaxPoolSize(appCfg.MongoMaxPoolSize).
			SetMinPoolSize(appCfg.MongoMinPoolSize)
		client, err := mongo.Connect(cctx, opts)
		if err != nil {
			return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(cctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		deps.Resources = resourcestore.New(deps.MongoDatabase)
		deps.Pinger = health.MongoPinger{Client: client}
		logger.Info("resource store: mongo", zap.String("database", appCfg.MongoDatabase))
	}

	if appCfg.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(appCfg.AMQPURL, appCfg.AMQPExchange, logger)
		if err != nil {
			closeStores(context.Background(), deps, logger)
			return DBDeps{}, fmt.Errorf("amqp: %w", err)
		}
		deps.Events = pub
	} else {
		deps.Events = events.Nop{}
	}

	policy, err := catalog.ParseWritePolicy(appCfg.CatalogWritePolicy)
	if err != nil {
		closeStores(context.Background(), deps, logger)
		return DBDeps{}, err
	}
	deps.Catalog = catalog.New(deps.Resources, deps.Events, policy, logger)

	return deps, nil
}

// EnsureSchema sets up indexes (mongo) or tables (sqlite).
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.SQL != nil {
		return resourcestore.NewSQL(deps.SQL).EnsureSchema(ctx)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}

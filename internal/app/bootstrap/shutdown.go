// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the event publisher and DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error
	if deps.Events != nil {
		if err := deps.Events.Close(); err != nil {
			logger.Error("event publisher close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := closeStores(ctx, deps, logger); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func closeStores(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	if deps.SQL != nil {
		if err := deps.SQL.Close(); err != nil {
			logger.Error("sqlite close failed", zap.Error(err))
			return err
		}
	}
	return nil
}

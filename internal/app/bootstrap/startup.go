// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// The first catalog load happens here. A failure is logged and kept on the
// catalog so clients see the load error; the server still starts and a
// later reload can recover.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := deps.Catalog.Load(ctx); err != nil {
		logger.Warn("initial catalog load failed", zap.Error(err))
		return nil
	}
	logger.Info("catalog loaded", zap.Int("resources", len(deps.Catalog.Resources())))
	return nil
}

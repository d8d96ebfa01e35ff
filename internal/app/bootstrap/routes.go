// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/kinderhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/kinderhub/internal/app/features/health"
	resourcesfeature "github.com/dalemusser/kinderhub/internal/app/features/resources"
	sessionfeature "github.com/dalemusser/kinderhub/internal/app/features/session"
	"github.com/dalemusser/kinderhub/internal/app/system/auditlog"
	"github.com/dalemusser/kinderhub/internal/app/system/auth"
	"github.com/dalemusser/kinderhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. KinderHub mounts three JSON areas:
//
//	/health     store ping and catalog state
//	/session    admin login/logout and the current role
//	/resources  catalog listing, filtering, likes and admin writes
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	gate, err := auth.NewGate(auth.GateConfig{
		SessionKey:      appCfg.SessionKey,
		SessionName:     appCfg.SessionName,
		Domain:          appCfg.SessionDomain,
		Secure:          coreCfg.Env == "prod",
		AdminSecret:     appCfg.AdminSecret,
		AdminSecretHash: appCfg.AdminSecretHash,
		EnforceWrites:   appCfg.EnforceAdminWrites,
	}, logger)
	if err != nil {
		logger.Error("session gate init failed", zap.Error(err))
		return nil, err
	}

	audit := auditlog.New(logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if appCfg.TrustProxyHeaders {
		// Rewrites RemoteAddr, which login rate limiting and audit keys on.
		r.Use(middleware.RealIP)
	}
	r.Use(gate.LoadSession)

	backend := appCfg.StoreBackend
	healthHandler := healthfeature.NewHandler(deps.Pinger, backend, deps.Catalog, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// The limiter lives as long as the process.
	var limiter *ratelimit.Limiter
	if appCfg.LoginRateLimit > 0 {
		limiter = ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	}
	sessionHandler := sessionfeature.NewHandler(gate, limiter, audit, errLog, logger)
	r.Mount("/session", sessionfeature.Routes(sessionHandler))

	resHandler := resourcesfeature.NewHandler(deps.Catalog, gate, audit, errLog, logger)
	r.Mount("/resources", resourcesfeature.Routes(resHandler))

	return r, nil
}

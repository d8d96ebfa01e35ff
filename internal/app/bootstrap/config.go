// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dalemusser/kinderhub/internal/app/system/catalog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	backendMongo  = "mongo"
	backendSQLite = "sqlite"
)

// appConfigKeys defines the configuration keys for KinderHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: KINDERHUB_MONGO_URI, KINDERHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: backendMongo, Desc: "Resource store: 'mongo' or 'sqlite'"},
	{Name: "sqlite_path", Default: "./kinderhub.db", Desc: "SQLite database file (store_backend=sqlite)"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "kinderhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "mongo_connect_timeout", Default: "10s", Desc: "How long to wait for the initial MongoDB connection"},

	{Name: "session_key", Default: "", Desc: "Session signing key (required in production; random per process in dev when blank)"},
	{Name: "session_name", Default: "kinderhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Admin gate
	{Name: "admin_secret", Default: "", Desc: "Shared admin secret (blank disables admin mode unless admin_secret_hash is set)"},
	{Name: "admin_secret_hash", Default: "", Desc: "bcrypt hash of the admin secret; takes precedence over admin_secret"},
	{Name: "enforce_admin_writes", Default: true, Desc: "Reject resource writes from non-admin sessions"},
	{Name: "login_rate_limit", Default: 10, Desc: "Admin login attempts per client IP per window (0 disables)"},
	{Name: "login_rate_window", Default: "15m", Desc: "Window for login_rate_limit (e.g., 15m, 1h)"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Use X-Forwarded-For/X-Real-IP as the client address (only behind a trusted proxy)"},

	{Name: "catalog_write_policy", Default: string(catalog.PolicyMerge), Desc: "After a write: 'merge' locally or 'refetch' the whole list"},

	// Change events
	{Name: "amqp_url", Default: "", Desc: "RabbitMQ URL for resource change events (blank disables)"},
	{Name: "amqp_exchange", Default: "kinderhub.events", Desc: "Topic exchange for resource change events"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "on", Desc: "Admin login/logout audit logging: 'on' or 'off'"},
	{Name: "audit_log_admin", Default: "on", Desc: "Resource write audit logging: 'on' or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// KINDERHUB_* environment variables and flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "KINDERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend: appValues.String("store_backend"),
		SQLitePath:   appValues.String("sqlite_path"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		MongoConnectWait: appValues.Duration("mongo_connect_timeout", 10*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		AdminSecret:        appValues.String("admin_secret"),
		AdminSecretHash:    appValues.String("admin_secret_hash"),
		EnforceAdminWrites: appValues.Bool("enforce_admin_writes"),
		LoginRateLimit:     appValues.Int("login_rate_limit"),
		LoginRateWindow:    appValues.Duration("login_rate_window", 15*time.Minute),
		TrustProxyHeaders:  appValues.Bool("trust_proxy_headers"),

		CatalogWritePolicy: appValues.String("catalog_write_policy"),

		AMQPURL:      appValues.String("amqp_url"),
		AMQPExchange: appValues.String("amqp_exchange"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	// Dev convenience: a blank key gets a random one, so sessions do not
	// survive restarts.
	if appCfg.SessionKey == "" && coreCfg.Env != "prod" {
		appCfg.SessionKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("session_key not set; generated an ephemeral key for this process")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case backendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database must not be empty")
		}
	case backendSQLite:
		if appCfg.SQLitePath == "" {
			return fmt.Errorf("sqlite_path must not be empty when store_backend is %q", backendSQLite)
		}
	default:
		return fmt.Errorf("unknown store_backend %q (want %q or %q)", appCfg.StoreBackend, backendMongo, backendSQLite)
	}

	if _, err := catalog.ParseWritePolicy(appCfg.CatalogWritePolicy); err != nil {
		return err
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required in %s", coreCfg.Env)
	}

	if appCfg.LoginRateLimit < 0 {
		return fmt.Errorf("login_rate_limit must not be negative")
	}
	if appCfg.LoginRateLimit > 0 && appCfg.LoginRateWindow <= 0 {
		return fmt.Errorf("login_rate_window must be positive when login_rate_limit is set")
	}

	if appCfg.AMQPURL != "" && appCfg.AMQPExchange == "" {
		return fmt.Errorf("amqp_exchange must be set when amqp_url is set")
	}

	return nil
}

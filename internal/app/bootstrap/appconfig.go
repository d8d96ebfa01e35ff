// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and timeouts; everything KinderHub needs on top of
// that lives here.
type AppConfig struct {
	// Resource store selection: "mongo" (default) or "sqlite".
	StoreBackend string
	SQLitePath   string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64
	MongoConnectWait time.Duration

	// Session cookie
	SessionKey    string // Signing key; must be long and random in production
	SessionName   string
	SessionDomain string // Blank means current host

	// Admin gate
	AdminSecret        string // Plain shared secret
	AdminSecretHash    string // bcrypt hash; wins over AdminSecret when set
	EnforceAdminWrites bool   // When false the admin flag is cosmetic

	// Admin login attempts allowed per client IP per window; 0 disables.
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Take the client address from X-Forwarded-For / X-Real-IP. Only set
	// this behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	// Catalog behavior after a successful write: "merge" or "refetch".
	CatalogWritePolicy string

	// Change events. Blank URL disables publishing.
	AMQPURL      string
	AMQPExchange string

	// Audit logging: "on" or "off" per category.
	AuditLogAuth  string
	AuditLogAdmin string
}

// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HS256 signing key (at least 32 bytes in production)
	JWTIssuer string        // "iss" claim written and required on every token
	JWTTTL    time.Duration // token lifetime

	BcryptCost int // cost for new password hashes

	// HTTP surface
	APIPrefix          string   // mount point of the JSON API (e.g., /api/v1)
	CORSAllowedOrigins []string // empty disables CORS headers

	// Board listing
	BoardPageSize    int // default page size for GET /board/me
	BoardMaxPageSize int // cap on the size query parameter

	// Login throttling. RedisURL shares counters across instances; blank
	// keeps them in process.
	RedisURL        string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit logging: 'all' (db+log), 'db', 'log', or 'off'
	AuditLogAuth  string
	AuditLogBoard string
}

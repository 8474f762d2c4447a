// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/taskplanner/internal/app/system/auditlog"
	"github.com/dalemusser/taskplanner/internal/app/system/auth"
	"github.com/dalemusser/taskplanner/internal/app/system/authutil"
	"github.com/dalemusser/taskplanner/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is accepted outside production only.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minProdSecretLen is the shortest JWT secret accepted in production.
const minProdSecretLen = 32

// appConfigKeys defines the configuration keys for the task planner.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: TASKPLANNER_MONGO_URI, TASKPLANNER_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "task_planner", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 token signing key (must be strong in production)"},
	{Name: "jwt_issuer", Default: "taskplanner", Desc: "Token issuer claim"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Token lifetime (e.g., 24h, 90m)"},
	{Name: "bcrypt_cost", Default: authutil.DefaultCost, Desc: "bcrypt cost for new password hashes"},

	// HTTP surface
	{Name: "api_prefix", Default: "/api/v1", Desc: "Mount point of the JSON API"},
	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated origins allowed by CORS (blank disables CORS)"},

	// Board listing
	{Name: "board_page_size", Default: paging.DefaultSize, Desc: "Default page size for board listing"},
	{Name: "board_max_page_size", Default: paging.MaxSize, Desc: "Largest page size a client may request"},

	// Login throttling
	{Name: "redis_url", Default: "", Desc: "Redis URL for shared login rate limiting (blank keeps counters in memory)"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts per IP per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate-limit window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_board", Default: "all", Desc: "Board event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TASKPLANNER_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TASKPLANNER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:  appValues.String("jwt_secret"),
		JWTIssuer:  appValues.String("jwt_issuer"),
		JWTTTL:     appValues.Duration("jwt_ttl", auth.DefaultTTL),
		BcryptCost: appValues.Int("bcrypt_cost"),

		APIPrefix:          normalizePrefix(appValues.String("api_prefix")),
		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		BoardPageSize:    appValues.Int("board_page_size"),
		BoardMaxPageSize: appValues.Int("board_max_page_size"),

		RedisURL:        appValues.String("redis_url"),
		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogBoard: appValues.String("audit_log_board"),
	}

	return coreCfg, appCfg, nil
}

// normalizePrefix turns "api/v1/" into "/api/v1". "/" and "" mean the root.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validAuditDest(d string) bool {
	switch d {
	case auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		return true
	}
	return false
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked here to catch configuration errors
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.JWTSecret == devJWTSecret || len(appCfg.JWTSecret) < minProdSecretLen {
			return fmt.Errorf("jwt_secret must be a non-default value of at least %d bytes in prod", minProdSecretLen)
		}
	}
	if appCfg.JWTTTL <= 0 {
		return errors.New("jwt_ttl must be positive")
	}

	if appCfg.BoardPageSize <= 0 || appCfg.BoardMaxPageSize <= 0 {
		return errors.New("board_page_size and board_max_page_size must be positive")
	}
	if appCfg.BoardPageSize > appCfg.BoardMaxPageSize {
		return fmt.Errorf("board_page_size (%d) exceeds board_max_page_size (%d)", appCfg.BoardPageSize, appCfg.BoardMaxPageSize)
	}

	if appCfg.LoginRateLimit <= 0 || appCfg.LoginRateWindow <= 0 {
		return errors.New("login_rate_limit and login_rate_window must be positive")
	}

	for key, d := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_board": appCfg.AuditLogBoard} {
		if !validAuditDest(d) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, d)
		}
	}

	return nil
}

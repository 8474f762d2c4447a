// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/account"
	authapifeature "github.com/dalemusser/taskplanner/internal/app/features/authapi"
	boardsfeature "github.com/dalemusser/taskplanner/internal/app/features/boards"
	errorsfeature "github.com/dalemusser/taskplanner/internal/app/features/errors"
	healthfeature "github.com/dalemusser/taskplanner/internal/app/features/health"
	itemsfeature "github.com/dalemusser/taskplanner/internal/app/features/items"
	profilefeature "github.com/dalemusser/taskplanner/internal/app/features/profile"
	tasksfeature "github.com/dalemusser/taskplanner/internal/app/features/tasks"
	"github.com/dalemusser/taskplanner/internal/app/planner"
	"github.com/dalemusser/taskplanner/internal/app/store/audit"
	"github.com/dalemusser/taskplanner/internal/app/system/auditlog"
	"github.com/dalemusser/taskplanner/internal/app/system/auth"
	"github.com/dalemusser/taskplanner/internal/app/system/ratelimit"
	"github.com/dalemusser/taskplanner/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Routes:
//
//	GET  /health                     no auth
//	POST {prefix}/auth/register      no auth
//	POST {prefix}/auth/login         no auth, rate limited
//	     {prefix}/user/me[/password] bearer token
//	     {prefix}/board/...          bearer token
//	     {prefix}/task/...           bearer token
//	     {prefix}/item/...           bearer token
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	accounts := account.NewMongo(deps.MongoDatabase, tokens, appCfg.BcryptCost, logger)
	plan := planner.NewMongo(deps.MongoClient, deps.MongoDatabase, logger)

	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Board: appCfg.AuditLogBoard,
	})

	var limiter *ratelimit.LoginLimiter
	if deps.Redis != nil {
		limiter = ratelimit.NewRedisLoginLimiter(deps.Redis, appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	} else {
		limiter = ratelimit.NewMemoryLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(reqlog.Middleware(logger))
	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: appCfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", reqlog.HeaderRequestID},
			ExposedHeaders: []string{reqlog.HeaderRequestID},
			MaxAge:         300,
		}))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errorsfeature.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errorsfeature.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	api := chi.NewRouter()
	api.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errorsfeature.WriteMessage(w, http.StatusNotFound, "Not found")
	})

	// Authentication
	authHandler := authapifeature.NewHandler(accounts, limiter, auditLog, errLog, logger)
	api.Mount("/auth", authapifeature.Routes(authHandler))

	// Everything else requires a bearer token.
	api.Group(func(pr chi.Router) {
		pr.Use(auth.RequireBearer(tokens, logger))

		profileHandler := profilefeature.NewHandler(accounts, auditLog, errLog, logger)
		pr.Mount("/user/me", profilefeature.Routes(profileHandler))

		boardsHandler := boardsfeature.NewHandler(plan, auditLog, appCfg.BoardPageSize, appCfg.BoardMaxPageSize, errLog, logger)
		pr.Mount("/board", boardsfeature.Routes(boardsHandler))

		tasksHandler := tasksfeature.NewHandler(plan, errLog, logger)
		pr.Mount("/task", tasksfeature.Routes(tasksHandler))

		itemsHandler := itemsfeature.NewHandler(plan, errLog, logger)
		pr.Mount("/item", itemsfeature.Routes(itemsHandler))
	})

	if appCfg.APIPrefix == "" {
		r.Mount("/", api)
	} else {
		r.Mount(appCfg.APIPrefix, api)
	}

	logger.Info("routes mounted",
		zap.String("api_prefix", appCfg.APIPrefix),
		zap.Bool("redis_rate_limit", deps.Redis != nil),
		zap.Int("cors_origins", len(appCfg.CORSAllowedOrigins)),
	)
	return r, nil
}

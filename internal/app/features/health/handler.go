package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is a backend the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MongoPinger pings the primary.
type MongoPinger struct{ Client *mongo.Client }

func (p MongoPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// RedisPinger pings a Redis server.
type RedisPinger struct{ Client *redis.Client }

func (p RedisPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Mongo Pinger
	Redis Pinger // nil when no rate-limit backend is configured
	Log   *zap.Logger
}

// NewHandler constructs a health Handler. redisClient may be nil.
func NewHandler(client *mongo.Client, redisClient *redis.Client, logger *zap.Logger) *Handler {
	h := &Handler{Mongo: MongoPinger{Client: client}, Log: logger}
	if redisClient != nil {
		h.Redis = RedisPinger{Client: redisClient}
	}
	return h
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// When any backend is down: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{Status: "ok", Database: "connected"}
	status := http.StatusOK

	if err := h.Mongo.Ping(ctx); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	}

	if h.Redis != nil {
		resp.Redis = "connected"
		if err := h.Redis.Ping(ctx); err != nil {
			h.Log.Error("health-check: redis ping failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			resp.Status = "error"
			resp.Redis = "disconnected"
			if resp.Message == "" {
				resp.Message = "Rate-limit backend unavailable"
			}
		}
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindow increments the counter and, on the first hit, starts its window.
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter is a Counter whose windows live in Redis, shared by every
// instance pointing at the same server.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedis creates a RedisLimiter. Keys are stored as prefix+key.
func NewRedis(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(l.limit), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

// NewRedisLoginLimiter mirrors NewMemoryLoginLimiter with Redis counters.
func NewRedisLoginLimiter(client *redis.Client, ipLimit int, window time.Duration) *LoginLimiter {
	return NewLoginLimiter(
		NewRedis(client, "taskplanner:ratelimit:", ipLimit, window),
		NewRedis(client, "taskplanner:ratelimit:", emailLimit(ipLimit), 5*window),
	)
}

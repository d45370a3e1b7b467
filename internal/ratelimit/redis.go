package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window request counter shared across instances.
// It fails open: when Redis is unreachable every request is allowed.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	script *redis.Script
	logger *slog.Logger
}

// NewRedisLimiter returns nil for a nil client; a nil limiter allows everything.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string, logger *slog.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		script: redis.NewScript(fixedWindowScript),
		logger: logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	if l.limit <= 0 || l.window <= 0 || key == "" {
		return true
	}
	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, ttl, l.limit).Int64()
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("rate limiter unavailable, allowing request", "key", redisKey, "error", err)
		}
		return true
	}
	return allowed == 1
}

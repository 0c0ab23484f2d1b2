package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts a request in the current window and returns the
// count together with the window's remaining lifetime in milliseconds.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

const redisTimeout = 250 * time.Millisecond

// RedisLimiter rate limits clients with fixed windows counted in Redis, so
// that every API instance shares the same limits. Redis errors fail open.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	config *Config
	prefix string
}

var _ Allower = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter over an existing client
func NewRedisLimiter(client *redis.Client, config *Config) *RedisLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(fixedWindowScript),
		config: config,
		prefix: "jobboard:ratelimit:",
	}
}

// DialRedis connects to the Redis server at url and verifies the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Allow checks whether a request from clientID to path may proceed.
func (l *RedisLimiter) Allow(ctx context.Context, clientID, path, method string) (bool, Info) {
	r, final := l.config.resolve(clientID, path, method)
	if final != nil {
		return final.Allowed, *final
	}
	if l.client == nil {
		return true, Info{Allowed: true, Limit: r.limit, Remaining: r.limit}
	}

	window := r.window.Milliseconds()
	if window <= 0 {
		window = 1
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	res, err := l.script.Run(ctx, l.client, []string{l.prefix + r.key}, window).Int64Slice()
	if err != nil || len(res) != 2 {
		log.Printf("[rate-limit] redis unavailable, allowing request: %v", err)
		return true, Info{Allowed: true, Limit: r.limit, Remaining: r.limit}
	}

	return windowInfo(r.limit, res[0], time.Duration(res[1])*time.Millisecond, time.Now())
}

// windowInfo turns a window's request count and remaining lifetime into a decision.
func windowInfo(limit int, count int64, ttl time.Duration, now time.Time) (bool, Info) {
	if ttl < 0 {
		ttl = 0
	}
	allowed := count <= int64(limit)
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	info := Info{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: now.Add(ttl),
	}
	if !allowed {
		info.RetryAfter = ttl
	}
	return allowed, info
}

// Stop closes the Redis client
func (l *RedisLimiter) Stop() {
	if l.client != nil {
		_ = l.client.Close()
	}
}

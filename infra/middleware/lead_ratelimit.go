package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Submit Rate Limiter
// =============================================================================

// SubmitRateLimiter throttles the public submission endpoint per client IP
// using a Redis fixed window, so the limit holds across API replicas. When
// Redis is unavailable the limiter falls back to an in-process window
// rather than rejecting traffic.
type SubmitRateLimiter struct {
	redis  *redis.Client
	prefix string
	limit  int
	window time.Duration

	mu    sync.Mutex
	local map[string]*localWindow
}

type localWindow struct {
	count     int
	expiresAt time.Time
}

func NewSubmitRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *SubmitRateLimiter {
	rl := &SubmitRateLimiter{
		redis:  redisClient,
		prefix: "ratelimit:submit:",
		limit:  limit,
		window: window,
		local:  make(map[string]*localWindow),
	}

	// Cleanup goroutine for the fallback map
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func (rl *SubmitRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, info := range rl.local {
		if now.After(info.expiresAt) {
			delete(rl.local, key)
		}
	}
}

func (rl *SubmitRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == "OPTIONS" {
			return c.Next()
		}

		count, ttl, err := rl.hit(c)
		if err != nil {
			count, ttl = rl.hitLocal(c.IP())
		}

		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		setSubmitRateHeaders(c, rl.limit, remaining, ttl)

		if count > rl.limit {
			return c.Status(429).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"code":        "RATE_LIMITED",
				"retry_after": int(ttl.Seconds()),
			})
		}

		return c.Next()
	}
}

// hit increments the Redis window for the client and returns the new count
// with the window's remaining TTL.
func (rl *SubmitRateLimiter) hit(c *fiber.Ctx) (int, time.Duration, error) {
	if rl.redis == nil {
		return 0, 0, fmt.Errorf("redis not configured")
	}

	ctx := c.Context()
	key := rl.prefix + c.IP()

	pipe := rl.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rl.window)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = rl.window
	}
	return int(incr.Val()), ttl, nil
}

func (rl *SubmitRateLimiter) hitLocal(ip string) (int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	info, exists := rl.local[ip]
	if !exists || now.After(info.expiresAt) {
		rl.local[ip] = &localWindow{count: 1, expiresAt: now.Add(rl.window)}
		return 1, rl.window
	}

	info.count++
	return info.count, info.expiresAt.Sub(now)
}

func setSubmitRateHeaders(c *fiber.Ctx, limit, remaining int, ttl time.Duration) {
	c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
}

package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// LoginLimiter counts login attempts per key inside a fixed window.
type LoginLimiter interface {
	// Allow records an attempt for key and reports whether it is still within budget.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, key string) error
}

type LimiterConfig struct {
	RedisURL string
	Attempts int
	Window   time.Duration
}

// NewLoginLimiter returns a Redis backed limiter, or a no-op limiter when RedisURL is empty.
func NewLoginLimiter(ctx context.Context, cfg LimiterConfig, logger *zap.Logger) (LoginLimiter, error) {
	if cfg.RedisURL == "" {
		logger.Info("portal login rate limiting disabled")
		return NoopLimiter{}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("portal login rate limiting enabled",
		zap.Int("attempts", cfg.Attempts),
		zap.Duration("window", cfg.Window),
	)
	return NewRedisLimiter(client, cfg.Attempts, cfg.Window), nil
}

// RedisLimiter implements LoginLimiter with INCR + EXPIRE. Every attempt pushes the window forward.
type RedisLimiter struct {
	client   redis.Cmdable
	attempts int
	window   time.Duration
}

func NewRedisLimiter(client redis.Cmdable, attempts int, window time.Duration) *RedisLimiter {
	if attempts <= 0 {
		attempts = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLimiter{client: client, attempts: attempts, window: window}
}

func limiterKey(key string) string {
	return "portal:login:" + key
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, limiterKey(key))
	pipe.Expire(ctx, limiterKey(key), l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("increment login attempts: %w", err)
	}
	return incr.Val() <= int64(l.attempts), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, limiterKey(key)).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

// NoopLimiter allows every attempt.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopLimiter) Reset(context.Context, string) error         { return nil }

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/testaro/testaro_backend/internal/core/ports"
	"github.com/testaro/testaro_backend/internal/platform/config"
)

const signupGuardKeyPrefix = "signup:email:"

// NewRedisClient connects to redis and verifies the connection with a ping.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// RedisSignupGuard implements the duplicate-registration cache on redis.
// Entries are short-lived; the store's unique index remains the authority.
type RedisSignupGuard struct {
	client *redis.Client
}

func NewRedisSignupGuard(client *redis.Client) *RedisSignupGuard {
	return &RedisSignupGuard{client: client}
}

var _ ports.SignupGuardCache = (*RedisSignupGuard)(nil)

func (g *RedisSignupGuard) Seen(ctx context.Context, email string) (bool, error) {
	err := g.client.Get(ctx, signupGuardKeyPrefix+email).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("signup guard get: %w", err)
	}
	return true, nil
}

func (g *RedisSignupGuard) Remember(ctx context.Context, email string, ttl time.Duration) error {
	if err := g.client.Set(ctx, signupGuardKeyPrefix+email, "1", ttl).Err(); err != nil {
		return fmt.Errorf("signup guard set: %w", err)
	}
	return nil
}

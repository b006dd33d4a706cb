package database

import (
	"context"
	"fmt"
	"time"

	"school-ledger/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the cache and task broker. Callers may treat a
// failure here as non-fatal since the ledger works without Redis.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

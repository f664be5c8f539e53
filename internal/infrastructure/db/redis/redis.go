// Package redis provides the connection helper and the JWT revocation
// blacklist backing logout.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr string
	DB   int
	// Timeout bounds dialing and every command. Revocation lookups sit on
	// the hot request path, so a slow Redis must fail fast rather than
	// stall authentication.
	Timeout time.Duration
}

// Connect builds a Redis client and proves connectivity with a ping before
// handing it out. The client registers under the portal's name so it can be
// told apart in CLIENT LIST on shared instances.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		ClientName:   "microbio-portal",
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

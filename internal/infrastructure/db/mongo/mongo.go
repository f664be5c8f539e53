// Package mongo implements the portal's persistence ports on MongoDB.
// Cases, their audit trail and portal accounts each live in their own
// collection; state transitions are expressed as conditional updates so a
// precondition check and its write are one atomic operation.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// Config captures what Connect needs to reach the portal's database.
type Config struct {
	URI      string
	Database string
	// Timeout bounds dialing, server selection and the verification ping.
	Timeout time.Duration
}

// Connect dials MongoDB, verifies the deployment is reachable with a ping
// against the primary, and returns the client plus the portal database handle.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("microbio-portal").
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes every portal collection relies on. Run
// once at boot, before serving traffic.
func EnsureIndexes(ctx context.Context, cases *CaseRepository, history *HistoryRepository, users *UserRepository) error {
	if err := cases.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("case indexes: %w", err)
	}
	if err := history.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("history indexes: %w", err)
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

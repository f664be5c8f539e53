// Portal is the HTTP server of the microbiology portal. It routes ocular
// sample submissions from clinicians to the reading centre laboratory and
// serves the generated reports back.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/oculab/microbio-portal/docs"
	"github.com/oculab/microbio-portal/internal/api"
	"github.com/oculab/microbio-portal/internal/core/service"
	"github.com/oculab/microbio-portal/internal/infrastructure/config"
	mongodb "github.com/oculab/microbio-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/oculab/microbio-portal/internal/infrastructure/db/redis"
	"github.com/oculab/microbio-portal/internal/infrastructure/queue"
	"github.com/oculab/microbio-portal/internal/infrastructure/storage"
	"github.com/oculab/microbio-portal/pkg/logger"
)

const shutdownGrace = 10 * time.Second

// @title                      Microbiology Portal API
// @version                    1.0
// @description                Clinical workflow API for routing ocular microbiology samples between submitting doctors and the reading centre laboratory.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "portal",
		Pretty:  cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	caseRepo := mongodb.NewCaseRepository(db)
	historyRepo := mongodb.NewHistoryRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	if err := mongodb.EnsureIndexes(ctx, caseRepo, historyRepo, userRepo); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Timeout: cfg.Redis.Timeout})
	if err != nil {
		return err
	}
	defer rdb.Close()
	revocations := redisdb.NewRevokedTokenStore(rdb)

	files, err := storage.NewDiskStore(cfg.Storage.Dir)
	if err != nil {
		return err
	}

	auditTrail := queue.NewAuditTrail(historyRepo, 0, logger.Component("audit"))
	auditTrail.Start(ctx)

	cases := service.NewCaseService(caseRepo, userRepo, auditTrail, files, logger.Component("cases"))
	auth := service.NewAuthService(userRepo, revocations, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))

	e := api.NewRouter(api.Dependencies{
		Cases:       cases,
		Auth:        auth,
		Mongo:       db,
		Redis:       rdb,
		Revocations: revocations,
		JWTSecret:   cfg.JWTSecret,
		MaxUploadMB: cfg.Storage.MaxUploadMB,
		Logger:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

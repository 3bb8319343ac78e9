// Package main boots the auth-core HTTP server and wires its dependencies.
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/velora-dev/auth-core/docs"
	"github.com/velora-dev/auth-core/internal/api"
	"github.com/velora-dev/auth-core/internal/core/service"
	"github.com/velora-dev/auth-core/internal/infrastructure/config"
	mongodb "github.com/velora-dev/auth-core/internal/infrastructure/db/mongo"
	"github.com/velora-dev/auth-core/internal/infrastructure/db/postgres"
	redisdb "github.com/velora-dev/auth-core/internal/infrastructure/db/redis"
	"github.com/velora-dev/auth-core/internal/infrastructure/queue"
	"github.com/velora-dev/auth-core/internal/realtime"
	"github.com/velora-dev/auth-core/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title						auth-core API
// @version					1.0
// @description				JWT authentication, role-based access control and user administration.
// @BasePath					/
//
// @securityDefinitions.apikey	CookieAuth
// @in							cookie
// @name						access_token
func main() {
	// .env is a local-development convenience; absence is fine.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "auth-core",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	pg, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN()})
	if err != nil {
		return err
	}
	defer pg.Close()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	mongoClient, auditDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	publisher, err := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.QueueName, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	tokens, err := service.NewTokenService(
		cfg.JWT.SecretKey,
		cfg.JWT.Algorithm,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTTL(),
		cfg.JWT.RefreshTTL(),
	)
	if err != nil {
		return err
	}

	users := postgres.NewUserRepository(pg)
	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	revoker := redisdb.NewRevocationStore(rdb)
	hub := realtime.NewHub(log)

	authService := service.NewAuthService(users, tokens, hasher, revoker, log)
	userService := service.NewUserService(users, hasher, publisher, hub, log)

	// Audit writers get their own context so in-flight requests can still
	// enqueue events while the HTTP listener drains.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	audit := queue.NewAuditDispatcher(0, mongodb.NewAuditRepository(auditDB), log)
	audit.Start(workerCtx)

	e := api.NewRouter(api.Deps{
		Config:    cfg,
		Auth:      authService,
		Users:     userService,
		Audit:     audit,
		RateStore: redisdb.NewLoginLimiter(rdb),
		Hub:       hub,
		Postgres:  pg,
		Redis:     rdb,
		Mongo:     auditDB,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// @title           Transactions API
// @version         1.0
// @description     Per-user transaction records with role-based access and JWT sessions.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/transactions-api/internal/api"
	"github.com/sirpyerre/transactions-api/internal/api/handler"
	"github.com/sirpyerre/transactions-api/internal/core/service"
	mongodb "github.com/sirpyerre/transactions-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/transactions-api/internal/infrastructure/db/redis"
	"github.com/sirpyerre/transactions-api/internal/pkg/config"
	"github.com/sirpyerre/transactions-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "transactions-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "transactions-api",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// --- Services ---
	tokens := service.NewJWTTokenService(cfg.JWTSecret, cfg.TokenTTL())
	authService := service.NewAuthService(
		mongodb.NewUserRepository(db),
		redisdb.NewUserCache(rdb, cfg.Redis.UserCacheTTL),
		service.NewBcryptHasher(bcrypt.DefaultCost),
		tokens,
		log.With().Str("component", "auth").Logger(),
	)
	txService := service.NewTransactionService(
		mongodb.NewTransactionRepository(db),
		log.With().Str("component", "transactions").Logger(),
	)

	e := api.NewRouter(api.Dependencies{
		AuthService:        authService,
		TransactionService: txService,
		Tokens:             tokens,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		Logger:             log,
		ReadinessChecks: map[string]handler.CheckFunc{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}

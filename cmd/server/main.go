package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	auth "github.com/ledgerkeep/auth"
	echoapi "github.com/ledgerkeep/auth/api/echo"
	cacheredis "github.com/ledgerkeep/auth/cache/redis"
	"github.com/ledgerkeep/auth/config"
	"github.com/ledgerkeep/auth/internal/metrics"
	"github.com/ledgerkeep/auth/internal/server"
	"github.com/ledgerkeep/auth/log"
	"github.com/ledgerkeep/auth/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := log.NewLogger(cfg.LogLevel, cfg.LogPretty)
	zlog.Logger = logger

	logger.Info().
		Str("http_port", cfg.HTTPPort).
		Str("redis_addr", cfg.RedisAddr()).
		Str("algorithm", cfg.Algorithm).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ledgerkeep auth server")

	if cfg.SecretKey == "defaultsecretkey" {
		logger.Warn().Msg("SECRET_KEY is the built-in default; do not run this in production")
	}

	tracerProvider, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize TracerProvider")
	}

	// Connection pool sized for the expected concurrency of authorization
	// flows; the pool ceiling keeps a burst of requests from exhausting the
	// backend.
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr(),
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// Not fatal: requests fail closed while the store is unreachable
		// and recover as soon as it is back.
		logger.Warn().Err(err).Msg("Redis unreachable at startup")
	}
	cancelPing()

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	tokenService, err := auth.NewTokenService(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	codeStore := cacheredis.NewCodeStore(redisClient, cacheredis.DefaultKeyPrefix)
	oauthService := auth.NewOAuthService(codeStore, tokenService, cfg.AuthCodeTTL())
	oauthAPI := echoapi.NewOAuth2API(oauthService)

	httpServer := server.NewHTTPServer(cfg, logger, oauthAPI, registry, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return redisClient.Ping(ctx).Err()
	})

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("TracerProvider shutdown failed")
	}
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("Redis client close failed")
	}

	logger.Info().Msg("Shutdown complete")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/devtrackhq/devtrack/internal/app/migrate"
	httpx "github.com/devtrackhq/devtrack/internal/http"
	"github.com/devtrackhq/devtrack/internal/repository/postgres"
	"github.com/devtrackhq/devtrack/internal/service/account"
	"github.com/devtrackhq/devtrack/internal/service/collab"
	"github.com/devtrackhq/devtrack/internal/service/health"
	"github.com/devtrackhq/devtrack/internal/service/project"
	"github.com/devtrackhq/devtrack/internal/ws"
	"github.com/devtrackhq/devtrack/pkg/config"
	"github.com/devtrackhq/devtrack/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", slog.LevelInfo)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	deployHub := ws.NewHub()

	accountSvc := account.New(repo, log, cfg)
	projectSvc := project.New(repo, repo, repo, deployHub, log)
	collabSvc := collab.New(repo, repo, repo, repo, log, cfg)

	var redisClient *redis.Client
	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RateLimitRedisPass,
			DB:       cfg.RateLimitRedisDB,
		})
		redisLimiter, err := httpx.NewRedisRateLimiter(redisClient, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	probes := []health.Probe{health.DatabaseProbe(pool.Ping)}
	if redisClient != nil {
		probes = append(probes, health.RedisProbe(redisClient))
	}
	for _, url := range cfg.HealthDependencies {
		probes = append(probes, health.HTTPProbe(probeName(url), url))
	}
	healthSvc := health.New(log, cfg.HealthProbeTimeout, probes...)

	router := httpx.NewRouter(log, accountSvc, projectSvc, collabSvc, healthSvc, limiter)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

// probeName derives a short component label from a dependency URL.
func probeName(url string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if idx := strings.IndexAny(name, "/:"); idx > 0 {
		name = name[:idx]
	}
	if name == "" {
		return "dependency"
	}
	return name
}

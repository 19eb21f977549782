// Package main is the entrypoint for the blog API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/blogback/blogback/internal/auth"
	"github.com/blogback/blogback/internal/cache"
	"github.com/blogback/blogback/internal/config"
	"github.com/blogback/blogback/internal/metrics"
	"github.com/blogback/blogback/internal/repository"
	"github.com/blogback/blogback/internal/server"
	"github.com/blogback/blogback/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx, repository.MigrateUp); err != nil {
			logger.Error("failed to run migrations", slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	var cacheClient *cache.Cache
	if cfg.RedisEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set, using in-process rate limiter")
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	var exporter *metrics.PrometheusRecorder
	if cfg.MetricsEnabled {
		exporter = metrics.NewPrometheus()
		recorder = exporter
	}

	authService := service.NewAuthService(repo, repo, auth.NewPasswordHasher(auth.DefaultParams), logger, recorder)
	articleService := service.NewArticleService(repo, logger, recorder)

	deps := routerDeps{
		cfg:      cfg,
		logger:   logger,
		version:  version,
		articles: articleService,
		accounts: authService,
		resolver: authService,
		recorder: recorder,
		db:       repo,
	}
	if cacheClient != nil {
		deps.limiter = cacheClient
		deps.cache = cacheClient
	} else {
		deps.limiter = cache.NewLocalLimiter()
	}
	if exporter != nil {
		deps.exporter = exporter
	}

	srv := server.New(setupRouter(deps), server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"metrics", cfg.MetricsEnabled,
		"redis", cfg.RedisEnabled(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

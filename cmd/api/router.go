package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/blogback/blogback/internal/cache"
	"github.com/blogback/blogback/internal/config"
	"github.com/blogback/blogback/internal/handler"
	"github.com/blogback/blogback/internal/metrics"
	"github.com/blogback/blogback/internal/middleware"
	"github.com/blogback/blogback/internal/model"
)

// Rate limit groups, used in Redis keys and metrics labels.
const (
	rateLimitGroupAuth  = "auth"
	rateLimitGroupWrite = "write"
)

// routerDeps collects everything setupRouter wires together.
// limiter, cache and exporter stay nil when their backend is disabled.
type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	version  string
	articles handler.ArticleService
	accounts handler.AuthService
	resolver middleware.TokenResolver
	limiter  middleware.RateLimiter
	recorder metrics.Recorder
	exporter handler.MetricsExporter
	db       handler.HealthChecker
	cache    handler.HealthChecker
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	cfg, logger := d.cfg, d.logger

	h := handler.New(d.version)
	healthHandler := handler.NewHealthHandler(d.db, d.cache)
	articleHandler := handler.NewArticleHandler(d.articles, logger)
	authHandler := handler.NewAuthHandler(d.accounts, logger)

	r := chi.NewRouter()

	// Set before any route so mounted sub-routers inherit them.
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// Global middleware
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.Instrument(d.recorder))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	if cfg.MetricsEnabled {
		r.Get("/metrics", handler.NewMetricsHandler(d.exporter).Metrics)
	}

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Resolver: d.resolver,
	}

	authLimit := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: d.limiter,
		Metrics: d.recorder,
		Enabled: cfg.RateLimitAuthEnabled,
		Group:   rateLimitGroupAuth,
		Limit:   cache.Limit{PerMinute: cfg.RateLimitAuthRPM, Burst: cfg.RateLimitAuthBurst},
	}

	writeLimit := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: d.limiter,
		Metrics: d.recorder,
		Enabled: cfg.RateLimitWriteEnabled,
		Group:   rateLimitGroupWrite,
		Limit:   cache.Limit{PerMinute: cfg.RateLimitWriteRPM, Burst: cfg.RateLimitWriteBurst},
	}

	r.Route("/api", func(r chi.Router) {
		// Public reads
		r.Get("/articles", articleHandler.List)
		r.Get("/articles/{id}", articleHandler.Get)

		// Credential endpoints, throttled per client IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(authLimit))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Bearer token required
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Get("/user", authHandler.Me)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAbility(model.AbilityProfileWrite))
				r.Use(middleware.RateLimitUser(writeLimit))
				r.Put("/user/update", authHandler.UpdateUser)
				r.Put("/user/password", authHandler.ChangePassword)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAbility(model.AbilityArticlesWrite))
				r.Use(middleware.RateLimitUser(writeLimit))
				r.Post("/articles", articleHandler.Create)
				r.Put("/articles/{id}", articleHandler.Update)
				r.Patch("/articles/{id}", articleHandler.Update)
				r.Delete("/articles/{id}", articleHandler.Delete)
			})
		})
	})

	return r
}

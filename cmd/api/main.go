// Package main is the entrypoint for the SnapLink API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/snaplink/snaplink/internal/analytics"
	"github.com/snaplink/snaplink/internal/cache"
	"github.com/snaplink/snaplink/internal/config"
	"github.com/snaplink/snaplink/internal/geoip"
	"github.com/snaplink/snaplink/internal/handler"
	"github.com/snaplink/snaplink/internal/metrics"
	"github.com/snaplink/snaplink/internal/middleware"
	"github.com/snaplink/snaplink/internal/ratelimit"
	"github.com/snaplink/snaplink/internal/repository"
	"github.com/snaplink/snaplink/internal/server"
	"github.com/snaplink/snaplink/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolLimits{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// The cache is fail-soft: an unreachable Redis is logged and the
	// service starts degraded rather than exiting.
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cfg.CacheOpTimeout, logger)
	if err != nil {
		logger.Error(
			"invalid Redis configuration",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()

	// Geo resolution is best-effort end to end: an unusable database
	// file disables it rather than blocking startup.
	geoResolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn("failed to open GeoIP database, geo lookups disabled",
			"path", cfg.GeoIPDBPath, "error", err)
		geoResolver, _ = geoip.Open("")
	}
	defer geoResolver.Close()
	if geoResolver.Enabled() {
		logger.Info("geoip lookups enabled", "path", cfg.GeoIPDBPath)
	}

	metricsRecorder := metrics.NewNoop()
	linkService := service.NewLinkService(repo, cfg.ShortCodeLength, metricsRecorder)

	var geo analytics.GeoResolver
	if geoResolver.Enabled() {
		geo = geoResolver
	}
	analyticsService := analytics.NewService(repo, cacheClient, geo, logger, cfg.StatsCacheTTL)
	dispatcher := analytics.NewDispatcher(analyticsService, logger, cfg.AnalyticsQueueSize, metricsRecorder)
	dispatcher.Start()

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	linkHandler := handler.NewLinkHandler(linkService, logger, cfg.BaseURL, int64(cfg.LinkTTLMin), int64(cfg.LinkTTLMax))
	redirectHandler := handler.NewRedirectHandler(linkService, dispatcher, logger)
	statsHandler := handler.NewStatsHandler(linkService, analyticsService, logger)

	r := setupRouter(healthHandler, linkHandler, redirectHandler, statsHandler, cacheClient, cfg, logger, metricsRecorder)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("analytics dispatcher", dispatcher.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
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
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	linkHandler *handler.LinkHandler,
	redirectHandler *handler.RedirectHandler,
	statsHandler *handler.StatsHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
	rec metrics.Recorder,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Identity)

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	var createLimiter, redirectLimiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		createLimiter = ratelimit.New(cacheClient, logger, cfg.RateLimitCreateMax, cfg.CreateWindow())
		redirectLimiter = ratelimit.New(cacheClient, logger, cfg.RateLimitRedirectMax, cfg.RedirectWindow())
	}

	r.Route("/api/v1/links", func(r chi.Router) {
		if createLimiter != nil {
			r.With(middleware.RateLimit(createLimiter, "create", rec)).Post("/", linkHandler.Create)
		} else {
			r.Post("/", linkHandler.Create)
		}
		r.Get("/", linkHandler.List)
		r.Get("/{id}", linkHandler.Get)
		r.Delete("/{id}", linkHandler.Delete)
		r.Get("/{id}/stats", statsHandler.Get)
	})

	if redirectLimiter != nil {
		r.With(middleware.RateLimit(redirectLimiter, "redirect", rec)).Get("/{code}", redirectHandler.Redirect)
	} else {
		r.Get("/{code}", redirectHandler.Redirect)
	}

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

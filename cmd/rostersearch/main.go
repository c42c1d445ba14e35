// Command rostersearch serves the team and player search pages and their
// JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"rostersearch/internal/api"
	"rostersearch/internal/config"
	"rostersearch/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "config.yaml file or directory containing it")
	addr := flag.String("addr", "", "listen address (host:port), overrides server.addr")
	migrate := flag.String("migrate", "", "run migrations: 'up' to apply, 'status' to show status")
	seedPath := flag.String("seed", "", "YAML fixture to load into the store before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		observability.NewLogger(observability.DefaultConfig()).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *seedPath != "" {
		cfg.Database.SeedPath = *seedPath
	}

	logger := observability.NewLogger(cfg.LoggerOptions())
	version := envOr("APP_VERSION", "dev")
	if file := config.ConfigFile(*configPath); file != "" {
		logger.Info("configuration loaded", "file", file)
	}

	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			Release:          version,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			AttachStacktrace: true,
		})
		if err != nil {
			logger.Warn("sentry initialization failed", "error", err)
		} else {
			logger.Info("sentry initialized", "environment", cfg.Sentry.Environment, "release", version)
			sentryEnabled = true
		}
	}

	// Handle migrations CLI before starting server
	if *migrate != "" {
		status, err := runMigrations(context.Background(), logger, cfg.Database, *migrate)
		if err != nil {
			logger.Error("migrate failed", "command", *migrate, "error", err)
			os.Exit(1)
		}
		logger.Info("migrations status", "driver", cfg.Database.Driver, "status", status)
		return
	}

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	logger.Info("store opened", "driver", cfg.Database.Driver)

	if cfg.Database.SeedPath != "" {
		if err := seedStore(context.Background(), logger, store, cfg.Database.SeedPath); err != nil {
			logger.Error("failed to seed store", "path", cfg.Database.SeedPath, "error", err)
			_ = store.Close()
			os.Exit(1)
		}
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.MetricsOptions(version))
		logger.Info("metrics enabled", "namespace", cfg.Metrics.Namespace, "version", version)
	} else {
		logger.Info("metrics disabled")
	}

	var rateCfg api.RateLimitConfig
	if cfg.RateLimit.Enabled {
		rateCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rateCfg.Burst = cfg.RateLimit.Burst
		if len(cfg.RateLimit.TrustedProxies) > 0 {
			proxies, err := api.ParseTrustedProxies(cfg.RateLimit.TrustedProxies...)
			if err != nil {
				logger.Error("invalid rate_limit.trusted_proxies", "error", err)
				_ = store.Close()
				os.Exit(1)
			}
			rateCfg.TrustedProxies = proxies
			logger.Info("trusted proxies configured", "count", len(proxies.CIDRs))
		}
		logger.Info("rate limiting configured",
			"requests_per_second", rateCfg.RequestsPerSecond,
			"burst", rateCfg.Burst,
		)
	} else {
		logger.Info("rate limiting disabled")
	}

	mux := http.NewServeMux()
	srv := api.NewServer(mux, store, logger, metrics)
	srv.RegisterRoutes()

	// Order: metrics (outermost) -> requestID -> logging -> CORS -> rateLimiting (innermost before handler)
	handler := api.ApplyMiddlewares(
		mux,
		observability.MetricsMiddleware(metrics),
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(logger.Slog()),
		api.CORSMiddleware(cfg.CORS.AllowedOrigins),
		observability.RateLimitMetricsMiddleware(metrics, rateCfg.Enabled()),
		api.RateLimitMiddleware(rateCfg, logger.Slog()),
	)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("rostersearch listening", "addr", cfg.Server.Addr, "version", version)
		serverErrors <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			exitCode = 1
		}
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	}

	logger.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	} else {
		logger.Info("server stopped gracefully")
	}
	shutdownCancel()

	if err := store.Close(); err != nil {
		logger.Error("error closing store", "error", err)
	} else {
		logger.Info("store closed")
	}

	if sentryEnabled {
		logger.Info("flushing sentry events", "deadline", "2s")
		sentry.Flush(2 * time.Second)
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/padelrpm/ranking/internal/adapters/demo"
	"github.com/padelrpm/ranking/internal/adapters/http/api"
	"github.com/padelrpm/ranking/internal/adapters/http/site"
	"github.com/padelrpm/ranking/internal/adapters/repository"
	"github.com/padelrpm/ranking/internal/adapters/sheets"
	app "github.com/padelrpm/ranking/internal/app"
	"github.com/padelrpm/ranking/internal/config"
	"github.com/padelrpm/ranking/pkg/logger"
	"github.com/padelrpm/ranking/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// The custom system metrics replace the default Go collectors, which
	// would otherwise duplicate series on the shared registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	source := buildSource(cfg, log)

	store, err := repository.New(ctx, cfg.DatabasePath, repository.WithLogger(log.Named("store")))
	if err != nil {
		log.Error(ctx, "failed to open snapshot store", logger.Error(err))
		return
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithSource(source),
		app.WithStore(store),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	site.NewServer(svc, site.WithLogger(log.Named("site"))).Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)

	handler := api.NoStoreMiddleware(api.RequestIDMiddleware(mux, log.Named("http")))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr), logger.String("source", cfg.Source))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildSource wires the configured fetcher behind the shared TTL cache.
func buildSource(cfg *config.Config, log logger.Logger) app.Source {
	var fetch sheets.Fetcher
	switch cfg.Source {
	case config.SourceDemo:
		fetch = demo.NewSource(cfg.DemoPlayers, cfg.DemoDays)
	default:
		fetch = sheets.NewClient(cfg.SheetID, cfg.Worksheet, cfg.CredentialsFile,
			sheets.WithClientLogger(log.Named("sheets")))
	}
	return sheets.NewCachedSource(fetch,
		time.Duration(cfg.CacheTTLSeconds)*time.Second,
		sheets.WithLogger(log.Named("source")))
}

// startSystemMetricsUpdater refreshes process gauges on a fixed interval.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/signupboard/internal/adapter/activityapi"
	"github.com/pscheid92/signupboard/internal/adapter/httpserver"
	"github.com/pscheid92/signupboard/internal/adapter/metrics"
	"github.com/pscheid92/signupboard/internal/app"
	"github.com/pscheid92/signupboard/internal/notice"
	"github.com/pscheid92/signupboard/internal/platform/config"
	apperrors "github.com/pscheid92/signupboard/internal/platform/errors"
	"github.com/pscheid92/signupboard/internal/platform/logging"
	"github.com/pscheid92/signupboard/internal/platform/version"
	"github.com/pscheid92/signupboard/internal/view"
)

const noticeEvictionInterval = time.Minute

func runGracefulShutdown(srv *httpserver.Server, stopEviction func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		stopEviction()
		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupActivitiesClient(cfg *config.Config, m *metrics.UpstreamMetrics) *activityapi.Client {
	client, err := activityapi.NewClient(cfg.ActivitiesAPIURL, cfg.UpstreamTimeout, m)
	if err != nil {
		slog.Error("Failed to create activities API client", "error", err)
		os.Exit(1)
	}
	return client
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	info := version.Get()
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", info.Version, "commit", info.Commit)

	registry := metrics.NewRegistry()
	m := metrics.NewSet(registry, apperrors.HTTPErrorsTotal)

	activities := setupActivitiesClient(cfg, m.Upstream)
	dispatcher := app.NewDispatcher(activities)

	// Visitor notice areas live as long as the visitor cookie.
	notices := notice.NewRegistry(clock, cfg.NoticeDuration, cfg.SessionMaxAge, m.Notice)
	stopEviction := notices.StartEvictionTimer(noticeEvictionInterval)

	renderer, err := view.New(cfg.NoticeDuration)
	if err != nil {
		slog.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	healthChecks := []httpserver.HealthCheck{
		{Name: "activities_api", Check: activities.Ping},
	}

	srv, err := httpserver.NewServer(cfg, dispatcher, notices, renderer,
		httpserver.WithHealthChecks(healthChecks...),
		httpserver.WithMetrics(m.HTTP, metrics.Handler(registry)),
	)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, stopEviction)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Server stopped")
}

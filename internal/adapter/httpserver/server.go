package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/signupboard/internal/adapter/metrics"
	"github.com/pscheid92/signupboard/internal/app"
	"github.com/pscheid92/signupboard/internal/domain"
	"github.com/pscheid92/signupboard/internal/platform/config"
	"github.com/pscheid92/signupboard/internal/view"
)

type dispatcher interface {
	Load(ctx context.Context) app.Result
	Signup(ctx context.Context, n app.Notifier, email, activity string) app.Result
	Remove(ctx context.Context, n app.Notifier, activity, email string, confirmed bool) app.Result
}

type noticeBoard interface {
	Show(visitorID uuid.UUID, n domain.Notice)
	Visible(visitorID uuid.UUID) domain.Notice
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	dispatcher dispatcher
	notices    noticeBoard
	renderer   *view.Renderer

	sessionStore   *sessions.CookieStore
	healthChecks   []HealthCheck
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	startTime      time.Time
}

// Option customizes a Server.
type Option func(*Server)

func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) { s.healthChecks = checks }
}

// WithMetrics records request metrics and serves handler at /metrics.
func WithMetrics(m *metrics.HTTPMetrics, handler http.Handler) Option {
	return func(s *Server) {
		s.httpMetrics = m
		s.metricsHandler = handler
	}
}

func NewServer(cfg *config.Config, d dispatcher, notices noticeBoard, renderer *view.Renderer, opts ...Option) (*Server, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		dispatcher:   d,
		notices:      notices,
		renderer:     renderer,
		sessionStore: setupSessionStore(cfg),
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Session keys
const (
	sessionName         = "signupboard-visitor"
	sessionKeyVisitorID = "visitor_id"
	flashEmail          = "form_email"
	flashActivity       = "form_activity"
	contextKeyVisitorID = "visitorID"
)

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}

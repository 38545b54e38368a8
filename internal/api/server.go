// Package api exposes the assistant over a JSON HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/dataeng-assistant/internal/chat"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	errors "github.com/Proton-105/dataeng-assistant/internal/errors"
	"github.com/Proton-105/dataeng-assistant/internal/health"
	"github.com/Proton-105/dataeng-assistant/internal/idempotency"
	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
	"github.com/Proton-105/dataeng-assistant/internal/leads"
	"github.com/Proton-105/dataeng-assistant/internal/lifecycle"
	"github.com/Proton-105/dataeng-assistant/internal/middleware"
	"github.com/Proton-105/dataeng-assistant/internal/ratelimit"
	"github.com/Proton-105/dataeng-assistant/internal/session"
	"github.com/Proton-105/dataeng-assistant/pkg/config"
	"github.com/Proton-105/dataeng-assistant/pkg/graceful"
)

// ChatService runs conversation turns.
type ChatService interface {
	Send(ctx context.Context, id string, channel session.Channel, text string) (chat.Result, error)
}

// ContactService stores explicit contact requests.
type ContactService interface {
	SubmitContact(ctx context.Context, in leads.ContactInput) (leads.ContactReceipt, error)
}

// Deps are the services behind the API.
type Deps struct {
	Chat        ChatService
	Contacts    ContactService
	Knowledge   *knowledge.Base
	Pacer       *conversation.Pacer
	Health      *health.Checker
	Probes      *lifecycle.Probes
	Idempotency idempotency.Manager
	Limiter     ratelimit.Limiter
	Limit       ratelimit.Rule
	Errors      *errors.Handler
}

// Server is the HTTP front end.
type Server struct {
	echo *echo.Echo
	cfg  config.ServerConfig
	app  config.AppConfig
	deps Deps
	log  *slog.Logger
}

// NewServer builds the echo router with all routes registered.
func NewServer(cfg config.ServerConfig, app config.AppConfig, deps Deps, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if deps.Errors == nil {
		deps.Errors = errors.NewHandler(log, false)
	}
	if deps.Knowledge == nil {
		deps.Knowledge = knowledge.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = newErrorHandler(deps.Errors, log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, HeaderIdempotencyKey, "X-Correlation-ID"},
	}))

	s := &Server{echo: e, cfg: cfg, app: app, deps: deps, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/livez", s.liveness)
	s.echo.GET("/readyz", s.readiness)

	api := s.echo.Group("/api")
	api.GET("/health", s.health)
	api.GET("/topics", s.topics)
	api.POST("/suggest", s.suggest)
	api.POST("/analytics", s.analytics)

	limited := api.Group("", middleware.HTTPRateLimit(s.deps.Limiter, s.deps.Limit, s.log))
	limited.POST("/chat", s.chat)
	limited.POST("/contact", s.contact)
}

// Echo exposes the router, mostly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	return graceful.NewServer(s.log, srv, s.cfg.ShutdownTimeout).ListenAndServe(ctx)
}

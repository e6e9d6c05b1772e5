package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
)

const (
	// WebhookPath receives GitHub release webhooks
	WebhookPath = "/hooks/github/release"
	HealthPath  = "/health"
)

type config struct {
	addr           string
	webhookSecret  string
	maxPayloadSize int64
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the secret used to verify X-Hub-Signature-256
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithMaxPayloadSize limits the size of accepted webhook bodies
func WithMaxPayloadSize(n int64) Option {
	return func(c *config) {
		c.maxPayloadSize = n
	}
}

// Server serves the health check and the release webhook
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server. webhookUC receives verified events.
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr:           "localhost:8080",
		maxPayloadSize: 25 << 20, // GitHub caps webhook payloads at 25MB
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get(HealthPath, handleHealth)

	webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC, cfg.maxPayloadSize)
	router.Post(WebhookPath, webhookHandler.Handle)

	return &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}, nil
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/utils/async"
)

// config holds internal HTTP server configuration
type config struct {
	addr        string
	driveCred   model.Credential
	githubCred  model.Credential
	maxBodySize int64
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithDefaultCredentials sets the credentials used when a request carries no
// token headers
func WithDefaultCredentials(driveCred, githubCred model.Credential) Option {
	return func(c *config) {
		c.driveCred = driveCred
		c.githubCred = githubCred
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server. Mirror runs accepted by the API are
// executed on runner.
func NewServer(
	ctx context.Context,
	mirrorUC interfaces.MirrorUseCase,
	runner *async.Runner,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr:        "localhost:8080",
		maxBodySize: 1 << 20,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	mirrorHandler := newMirrorHandler(mirrorUC, runner, cfg)
	router.Route("/api", func(r chi.Router) {
		r.Post("/mirror", mirrorHandler.Start)
		r.Get("/runs/{id}", mirrorHandler.GetRun)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}

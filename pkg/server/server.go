// Package server hosts experiment sessions for browser AR pages. Each
// WebSocket connection gets its own session and dispatch loop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/variant"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("vanish.server")

// Config holds the server settings.
type Config struct {
	Addr           string
	ReadLimit      int64
	WriteTimeout   time.Duration
	AllowedOrigins []string
	DefaultVariant string
	// Seed fixes each session's recolor sequence when non-zero.
	Seed int64
	// Pick keeps a copy of each session's scene on the server so clients
	// may send tap rays instead of ranked candidates.
	Pick bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		ReadLimit:      64 * 1024,
		WriteTimeout:   10 * time.Second,
		DefaultVariant: variant.DefaultVariant,
	}
}

// Server serves the variant catalogue and the session socket.
type Server struct {
	cfg      Config
	registry *variant.Registry
	logger   *logging.Logger
	router   *gin.Engine
	upgrader websocket.Upgrader
}

// New creates a server. It does not listen until Run is called.
func New(cfg Config, registry *variant.Registry, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.MustLogger("server")
	}
	def := DefaultConfig()
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = def.ReadLimit
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.DefaultVariant == "" {
		cfg.DefaultVariant = def.DefaultVariant
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Infof("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, r.Header.Get("Origin"))
}

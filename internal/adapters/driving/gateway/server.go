package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/custodia-labs/weldsafe/internal/logger"
)

// DefaultBodyLimit admits voice notes up to the transcription API limit.
const DefaultBodyLimit = 25 * 1024 * 1024

const shutdownTimeout = 10 * time.Second

// Options tunes the HTTP server.
type Options struct {
	// BodyLimit caps request bodies in bytes.
	BodyLimit int

	// ReadTimeout bounds reading a request. Zero means no limit.
	ReadTimeout time.Duration
}

// Server is the HTTP gateway.
type Server struct {
	ports *Ports
	app   *fiber.App
}

// New creates the gateway and registers its routes.
func New(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:               "weldsafe",
		BodyLimit:             opts.BodyLimit,
		ReadTimeout:           opts.ReadTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestID())
	app.Use(fiberrecover.New())
	app.Use(otelfiber.Middleware())
	app.Use(accessLog())

	s := &Server{ports: ports, app: app}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)

	v1 := s.app.Group("/v1")
	v1.Post("/answer", s.handleAnswer)
	v1.Get("/index", s.handleIndex)
	if s.ports.Conversation != nil {
		v1.Post("/messages", s.handleMessage)
		v1.Post("/voice", s.handleVoice)
	}
}

// App returns the fiber application, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP gateway listening on %s", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

// Package httpapi serves the batch question-answering endpoint over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

const (
	// shutdownTimeout bounds in-flight batches when the server stops.
	shutdownTimeout = 10 * time.Second

	// bodyLimit caps request bodies. Documents are referenced by URL.
	bodyLimit = "1M"
)

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("ingest and answer services are required")

// Ports aggregates the driving ports the HTTP server uses.
type Ports struct {
	Ingest driving.IngestService
	Answer driving.AnswerService

	// Document backs GET /documents. Optional.
	Document driving.DocumentService
}

// Config holds server options.
type Config struct {
	// AuthToken enables bearer authentication when set.
	AuthToken string
}

// Server is the echo-backed HTTP server.
type Server struct {
	ports *Ports
	echo  *echo.Echo
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil || ports.Ingest == nil || ports.Answer == nil {
		return nil, ErrMissingService
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http: %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	s := &Server{ports: ports, echo: e}

	e.GET("/health", s.health)

	auth := BearerAuth(cfg.AuthToken)
	e.POST("/hackrx/run", s.run, auth)
	if ports.Document != nil {
		e.GET("/documents", s.listDocuments, auth)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http: shutdown: %v", err)
		}
	}()

	logger.Info("http: listening on %s", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

// errorHandler renders errors as {"detail": "..."}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		detail = fmt.Sprint(httpErr.Message)
	} else {
		logger.Error("http: %s %s: %v", c.Request().Method, c.Path(), err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Detail: detail})
	}
	if err != nil {
		logger.Warn("http: writing error response: %v", err)
	}
}

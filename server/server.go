// Package server exposes the gateway over HTTP.
//
// Information Hiding:
// - Routing, CORS and request body decoding
// - Mapping of domain errors to HTTP status codes
// - Listener lifecycle and graceful shutdown
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richinex/modelgate/agent"
	"github.com/richinex/modelgate/config"
	"github.com/richinex/modelgate/gateway"
	"github.com/richinex/modelgate/llm"
	"github.com/richinex/modelgate/observe"
	"github.com/richinex/modelgate/review"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	writeTimeout        = 120 * time.Second
	idleTimeout         = 120 * time.Second
)

// Server serves the gateway routes under /aichat.
type Server struct {
	svc     *gateway.Service
	app     *echo.Echo
	obs     *observe.Observer
	address string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.ServerConfig, svc *gateway.Service, obs *observe.Observer) (*Server, error) {
	if svc == nil {
		return nil, errors.New("service must not be nil")
	}
	if obs == nil {
		obs = observe.Discard()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := obs.Log().Info()
			if v.Status >= http.StatusInternalServerError {
				event = obs.Log().Warn()
			}
			event = event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Int("latency_ms", int(v.Latency.Milliseconds()))
			if v.Error != nil {
				event = event.Err(v.Error)
			}
			event.Msg("request")
			return nil
		},
	}))
	e.Use(cors(cfg.AllowedOrigins))

	s := &Server{
		svc:     svc,
		app:     e,
		obs:     obs,
		address: fmt.Sprintf(":%d", cfg.Port),
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.obs.Log().Warn().Str("addr", s.address).Msg("modelgate listening")

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.obs.Log().Info().Msg("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	g := s.app.Group("/aichat")
	g.GET("/health", s.handleHealth)
	g.GET("/models", s.handleModels)
	g.GET("/tools", s.handleTools)
	g.POST("/chat", s.handleChat)
	g.POST("/embeddings", s.handleEmbeddings)
	g.POST("/agent/run", s.handleAgentRun)
	g.POST("/code-review", s.handleCodeReview)

	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleModels(c echo.Context) error {
	models, err := s.svc.ListModels(c.QueryParam("provider"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"models": models})
}

func (s *Server) handleTools(c echo.Context) error {
	list := s.svc.Tools()
	out := make([]map[string]any, 0, len(list))
	for _, meta := range list {
		out = append(out, map[string]any{
			"name":        meta.Name,
			"description": meta.Description,
			"parameters":  meta.Schema(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"tools": out})
}

func (s *Server) handleChat(c echo.Context) error {
	var req llm.ChatRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	result, err := s.svc.Chat(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleEmbeddings(c echo.Context) error {
	var req llm.EmbeddingRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	result, err := s.svc.Embeddings(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleAgentRun(c echo.Context) error {
	var req agent.Request
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	run, err := s.svc.RunAgent(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleCodeReview(c echo.Context) error {
	var req review.Request
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	result, err := s.svc.Review(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{Status: http.StatusBadRequest, Message: "request body is required"}
		}
		return requestError{Status: http.StatusBadRequest, Message: fmt.Sprintf("invalid JSON payload: %v", err)}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{Status: http.StatusBadRequest, Message: "request body must contain a single JSON object"}
	}
	return nil
}

type requestError struct {
	Status  int
	Message string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error string `json:"error"`
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = c.JSON(reqErr.Status, errorBody{Error: reqErr.Message})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, errorBody{Error: fmt.Sprint(he.Message)})
		return
	}

	_ = c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
}

// toHTTPError maps a gateway error to its status. The message is the
// wrapped error text, which never carries credentials.
func toHTTPError(err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gateway.ErrInvalidRequest), errors.Is(err, llm.ErrUnknownProvider):
		status = http.StatusBadRequest
	case errors.Is(err, llm.ErrMissingCredential):
		status = http.StatusInternalServerError
	case errors.Is(err, llm.ErrProviderCallFailed), errors.Is(err, llm.ErrUnsupported):
		status = http.StatusBadGateway
	}
	return requestError{Status: status, Message: err.Error()}
}

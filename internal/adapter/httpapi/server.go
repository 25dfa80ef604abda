package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"pagepilot/internal/adapter/tool"
	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

const maxBodyBytes = 1 << 20

type Config struct {
	Addr string
	// AccessLog enables JSON request logging through httplog.
	AccessLog bool
}

// Server exposes the browser tools over HTTP. All browser access is
// serialized because the facade holds a single page.
type Server struct {
	cfg     Config
	browser output.BrowserPort
	tools   output.ToolRegistry
	logger  output.LoggerPort

	mu     sync.Mutex
	router chi.Router
}

func NewServer(cfg Config, browser output.BrowserPort, tools output.ToolRegistry, logger output.LoggerPort) *Server {
	s := &Server{
		cfg:     cfg,
		browser: browser,
		tools:   tools,
		logger:  logger.WithField("component", "http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	if s.cfg.AccessLog {
		r.Use(httplog.RequestLogger(httplog.NewLogger("pagepilot", httplog.Options{
			JSON:    true,
			Concise: true,
		})))
	} else {
		r.Use(middleware.RequestID)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/tools", s.handleListTools)
	r.Post("/tools/{name}", s.handleExecuteTool)
	r.Post("/session", s.handleOpenSession)
	r.Delete("/session", s.handleCloseSession)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down and releases
// the browser.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}

	s.mu.Lock()
	s.browser.Cleanup()
	s.mu.Unlock()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type errorResponse struct {
	Error string `json:"error"`
}

type resultResponse struct {
	Result string `json:"result"`
}

type statusResponse struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	initialized := s.browser.IsInitialized()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Initialized: initialized})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tools.Definitions())
}

func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	name := entity.ToolName(chi.URLParam(r, "name"))
	t, ok := s.tools.Get(name)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: %q", output.ErrUnknownTool, name))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", tool.ErrInvalidArguments, err))
		return
	}

	s.mu.Lock()
	result, err := t.Execute(r.Context(), string(body))
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Tool execution failed", "name", name, "error", err)
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: result})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.browser.Initialize(r.Context())
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Initialized: true})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.browser.Cleanup()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Initialized: false})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tool.ErrInvalidArguments), errors.Is(err, tool.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, output.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, output.ErrNotInitialized):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

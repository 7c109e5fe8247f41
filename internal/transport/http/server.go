package http

import (
	"bufio"
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"secretwheel/internal/app"
	"secretwheel/internal/config"
	"secretwheel/internal/transport/ws"
)

// Server serves the wheel REST API, the WebSocket endpoint and the renderer page
type Server struct {
	server *http.Server
	hub    *app.WheelHub
	logger *slog.Logger
	webFS  fs.FS
}

// NewServer creates a new HTTP server. webFS must hold index.html and a static/ directory.
func NewServer(cfg *config.Config, hub *app.WheelHub, logger *slog.Logger, webFS fs.FS) *Server {
	s := &Server{
		hub:    hub,
		logger: logger,
		webFS:  webFS,
	}

	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler wrapped in middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)
	return s.logRequests(allowCrossOriginAPI(mux))
}

func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/wheels", s.handleCreateWheel)
	mux.HandleFunc("GET /api/wheels/{roomCode}", s.handleGetWheel)
	mux.HandleFunc("GET /api/wheels/{roomCode}/exists", s.handleWheelExists)
	mux.HandleFunc("POST /api/wheels/{roomCode}/labels", s.handleAddLabel)
	mux.HandleFunc("DELETE /api/wheels/{roomCode}/labels", s.handleResetWheel)
	mux.HandleFunc("POST /api/wheels/{roomCode}/spins", s.handleStartSpin)
	mux.HandleFunc("POST /api/wheels/{roomCode}/spins/{spinId}/complete", s.handleCompleteSpin)
	mux.HandleFunc("POST /api/wheels/{roomCode}/spins/{spinId}/cancel", s.handleCancelSpin)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.Handle("GET /ws", ws.NewHandler(s.hub, s.logger))

	mux.HandleFunc("GET /static/{file...}", s.handleStatic)
	mux.HandleFunc("GET /", s.handleSPA)
}

// allowCrossOriginAPI lets renderers hosted elsewhere call /api/
func allowCrossOriginAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequests logs one line per request. Asset, health and socket traffic
// goes to debug so spins and label changes stand out at info.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/api/wheels") {
			level = slog.LevelDebug
		}

		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// statusRecorder captures the response status for request logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to the WebSocket upgrader
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	rec.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

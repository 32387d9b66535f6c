package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"blacksheep/internal/app"
	"blacksheep/internal/config"
	"blacksheep/internal/transport/ws"
)

// Server is the HTTP server carrying the REST API and the WebSocket
// gateway endpoint.
type Server struct {
	server    *http.Server
	games     *app.GameService
	processor *app.RoundProcessor
	registry  *app.RoomRegistry
	config    *config.Config
	logger    *slog.Logger
}

// NewServer wires the REST routes and the gateway onto one listener.
func NewServer(cfg *config.Config, games *app.GameService, processor *app.RoundProcessor, registry *app.RoomRegistry, lookup ws.GameLookup, logger *slog.Logger) *Server {
	s := &Server{
		games:     games,
		processor: processor,
		registry:  registry,
		config:    cfg,
		logger:    logger,
	}

	router := httprouter.New()
	s.setupRoutes(router, ws.NewHandler(registry, lookup, logger))

	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      s.middleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(router *httprouter.Router, gateway *ws.Handler) {
	router.HandlerFunc(http.MethodPost, "/api/games", s.handleCreateGame)
	router.GET("/api/games/:id", s.handleGetGame)
	router.GET("/api/games/:id/players", s.handleListPlayers)
	router.GET("/api/games/:id/qr", s.handleGameQR)
	router.POST("/api/games/:id/next-round", s.handleNextRound)
	router.POST("/api/games/:id/reset", s.handleResetGame)

	// Static segment kept out of /api/games: httprouter forbids mixing
	// a literal with the :id wildcard at the same position.
	router.GET("/api/codes/:code", s.handleGetGameByCode)

	router.HandlerFunc(http.MethodPost, "/api/players", s.handleCreatePlayer)
	router.HandlerFunc(http.MethodPost, "/api/answers", s.handleSubmitAnswer)
	router.POST("/api/rounds/:id/process", s.handleProcessRound)

	router.HandlerFunc(http.MethodGet, "/api/health", s.handleHealth)
	router.HandlerFunc(http.MethodGet, "/api/stats", s.handleStats)

	router.Handler(http.MethodGet, "/ws", gateway)
}

// middleware wraps the handler with logging and CORS.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

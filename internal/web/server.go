package web

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Config holds server configuration
type Config struct {
	Port           int
	StaticDir      string   // serve assets from disk instead of the embedded copy
	AllowedOrigins []string // cors; empty allows all
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *Config
	listener   net.Listener
	hub        *Hub // WebSocket Hub
	health     http.Handler
}

// NewServer creates a new HTTP server. hub may be nil.
func NewServer(cfg *Config, hub *Hub) *Server {
	router := chi.NewRouter()

	srv := &Server{
		router: router,
		config: cfg,
		hub:    hub,
		health: http.HandlerFunc(plainHealth),
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	var static fs.FS = StaticFS()
	if s.config.StaticDir != "" {
		static = os.DirFS(s.config.StaticDir)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// WebSocket
	if s.hub != nil {
		s.router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.hub, w, r)
		})
	}

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.health.ServeHTTP(w, r)
	})
}

func plainHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok","version":"dev"}`)); err != nil {
		_ = err // Client disconnected
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Create listener
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s.httpServer.Serve(listener)
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// BaseURL returns the server's base URL
func (s *Server) BaseURL() string {
	if s.listener != nil {
		return fmt.Sprintf("http://%s", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://localhost:%d", s.config.Port)
}

// MountAPI routes /api/* and /health to the typed JSON api.
// Routes registered with the Register methods take precedence.
func (s *Server) MountAPI(api http.Handler) {
	s.router.Handle("/api/*", api)
	s.health = api
}

// RegisterPagesHandler registers HTML page handlers
func (s *Server) RegisterPagesHandler(handler interface{}) {
	type pagesHandler interface {
		Dashboard(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(pagesHandler); ok {
		s.router.Get("/", h.Dashboard)
	}
}

// RegisterReportsHandler registers report download handlers
func (s *Server) RegisterReportsHandler(handler interface{}) {
	type reportsHandler interface {
		DownloadCSV(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(reportsHandler); ok {
		s.router.Get("/api/report/csv", h.DownloadCSV)
	}
}

// RegisterDatasetHandler registers dataset maintenance handlers
func (s *Server) RegisterDatasetHandler(handler interface{}) {
	type datasetHandler interface {
		Reload(w http.ResponseWriter, r *http.Request)
		Status(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(datasetHandler); ok {
		s.router.Get("/api/dataset", h.Status)
		s.router.Post("/api/dataset/reload", h.Reload)
	}
}

// Router returns the underlying Chi router for external route mounting.
func (s *Server) Router() *chi.Mux {
	return s.router
}

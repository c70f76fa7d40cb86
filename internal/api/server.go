package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"
)

// Server represents the Fuego API server.
// It is mounted on the web router rather than listening on its own.
type Server struct {
	fuego   *fuego.Server
	deps    *Dependencies
	version string
}

// Dependencies contains all service dependencies.
type Dependencies struct {
	Sales   SalesService
	Dataset DatasetInfo   // optional
	Viewers ViewerCounter // optional
}

// Config holds API server configuration.
type Config struct {
	Port        int
	Title       string
	Description string
	Version     string
}

// NewServer creates a new Fuego API server.
func NewServer(cfg *Config, deps *Dependencies) *Server {
	s := fuego.NewServer(
		fuego.WithAddr(fmt.Sprintf(":%d", cfg.Port)),
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				PrettyFormatJSON: true,
				JSONFilePath:     "openapi.json",
				SwaggerURL:       "/docs",
				SpecURL:          "/openapi.json",
				UIHandler: func(specURL string) http.Handler {
					return ScalarHandler(specURL, cfg.Title, cfg.Description)
				},
			}),
		),
	)

	// Set OpenAPI info
	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	// access logging and request ids come from the outer chi router
	fuego.Use(s, middleware.Recoverer)

	srv := &Server{
		fuego:   s,
		deps:    deps,
		version: cfg.Version,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) registerRoutes() {
	// Health check
	fuego.Get(s.fuego, "/health", s.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the health status of the API and the loaded dataset"),
		option.Tags("System"),
	)

	salesGroup := fuego.Group(s.fuego, "/api",
		option.Tags("Sales"),
	)

	fuego.Get(salesGroup, "/kpis", s.getKPIs,
		option.Summary("Get KPIs"),
		option.Description("Returns total sales, order count, average order value and the chart series. Both bounds are inclusive."),
		option.Query("start", "Start date (YYYY-MM-DD), optional"),
		option.Query("end", "End date (YYYY-MM-DD), optional"),
	)

	fuego.Get(salesGroup, "/sales_by_month", s.getSalesByMonth,
		option.Summary("Sales by Month"),
		option.Description("Returns total sales per YYYY-MM month, ascending"),
		option.Query("start", "Start date (YYYY-MM-DD), optional"),
		option.Query("end", "End date (YYYY-MM-DD), optional"),
	)
}

// Mux returns the underlying ServeMux for mounting on another router.
func (s *Server) Mux() *http.ServeMux {
	return s.fuego.Mux
}

// MountDocsOn mounts the OpenAPI documentation routes (/docs, /openapi.json)
// on a Chi router. This allows using Fuego's OpenAPI generation with an
// existing router.
func (s *Server) MountDocsOn(r interface {
	Get(pattern string, handlerFn http.HandlerFunc)
}, title, description string) {
	// Serve Scalar UI directly at /docs
	scalarHandler := ScalarHandler("/openapi.json", title, description)
	r.Get("/docs", func(w http.ResponseWriter, req *http.Request) {
		scalarHandler.ServeHTTP(w, req)
	})

	// Serve OpenAPI spec from Fuego's generated schema
	r.Get("/openapi.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		spec := s.fuego.OpenAPI.Description()
		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	})
}

package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/pmurley/afl-trade-bot/internal/mcptools"
	"github.com/pmurley/afl-trade-bot/internal/service"
)

// Config holds server configuration
type Config struct {
	Port        string
	Log         zerolog.Logger
	Service     *service.Service
	CORSOrigins []string
	MCPAPIKey   string
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	svc       *service.Service
	mcpAPIKey string
	port      string
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		svc:       cfg.Service,
		mcpAPIKey: strings.TrimSpace(cfg.MCPAPIKey),
		port:      cfg.Port,
	}

	s.setupMiddleware(cfg.CORSOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/trades", func(r chi.Router) {
			r.Post("/recommend", s.handleRecommend)
		})
		r.Route("/team", func(r chi.Router) {
			r.Get("/", s.handleGetTeam)
			r.Put("/", s.handlePutTeam)
			r.Get("/captain", s.handleCaptain)
		})
		r.Route("/pool", func(r chi.Router) {
			r.Get("/stats", s.handlePoolStats)
			r.Post("/reload", s.handlePoolReload)
			r.Get("/players", s.handlePoolSearch)
			r.Get("/players/{id}", s.handlePoolPlayer)
		})
		r.Get("/history", s.handleHistory)
	})

	mcpServer, registry := mcptools.NewServer(s.svc)
	s.router.With(s.mcpAuth).Handle("/mcp", mcptools.Handler(mcpServer))
	s.router.With(s.mcpAuth).Get("/mcp/tools", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"tools": registry})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("port", s.port).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// mcpAuth accepts the key in X-API-Key or as a bearer token. No key
// configured means the endpoint is open.
func (s *Server) mcpAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.mcpAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if key == "" {
			if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				key = strings.TrimSpace(authz[7:])
			}
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.mcpAPIKey)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

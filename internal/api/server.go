// Package api provides the HTTP API server and handlers for the cookbook server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cookbookapp/cookbook-server/internal/ratelimit"
	"github.com/cookbookapp/cookbook-server/internal/service"
	"github.com/cookbookapp/cookbook-server/internal/store"
)

// Services holds all business services used by the HTTP handlers.
type Services struct {
	Auth   *service.AuthService
	Recipe *service.RecipeService
	Label  *service.LabelService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        store.Store
	services     *Services
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
	loginLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
// The login limiter throttles POST /sessions per client IP.
func NewServer(st store.Store, services *Services, loginLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Attaches the user ID to the request context when a valid bearer
	// token is present. Handlers reject via GetUserID when auth is required.
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Cookbook API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:        st,
		services:     services,
		router:       router,
		api:          api,
		logger:       logger,
		loginLimiter: loginLimiter,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerRecipeRoutes()
	s.registerLabelRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs each request with method, path, status, and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

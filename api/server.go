package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mymedicos/discuss-backend/auth"
	"github.com/mymedicos/discuss-backend/config"
	"github.com/mymedicos/discuss-backend/database"
	"github.com/mymedicos/discuss-backend/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	defaultRateLimitRequests = 5000
	defaultRateLimitWindow   = 15 * time.Minute
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database, verifier auth.Verifier, c map[string]string) (Server, error) {
	if verifier == nil {
		return Server{}, fmt.Errorf("no credential verifier configured")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	router := newRouter(database, verifier, withConfig(c), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(c, "READ_TIMEOUT_SECONDS", 180*time.Second),
		WriteTimeout: config.GetDuration(c, "WRITE_TIMEOUT_SECONDS", 180*time.Second),
		IdleTimeout:  config.GetDuration(c, "IDLE_TIMEOUT_SECONDS", 180*time.Second),
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(database database.Database, verifier auth.Verifier, opts ...func(*router)) *chi.Mux {
	router := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(RecordMetrics)

	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.GetList(router.config, "ACCEPTED_ORIGINS"),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chiRouter.Get("/healthz", healthz(router.startupTime))
	chiRouter.Handle("/metrics", promhttp.Handler())

	identity := services.NewIdentityService(verifier, database.UserRepo(), database.LegacyProfileRepo())
	handlers := initializeHandlers(database, identity)
	authMiddleware := newAuthMiddleware(identity)

	guard := newRateGuard(
		config.GetInt(router.config, "RATE_LIMIT_REQUESTS", defaultRateLimitRequests),
		config.GetDuration(router.config, "RATE_LIMIT_WINDOW_SECONDS", defaultRateLimitWindow),
	)

	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Use(guard.limit)
		if config.GetBool(router.config, "LOG_REQUESTS", true) {
			r.Use(ColoredHTTPLoggingMiddleware)
		}
		setupForumRoutes(r, handlers, authMiddleware)
	})

	return chiRouter
}

func healthz(startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "healthz").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteSuccess(w, http.StatusOK, map[string]any{
			"status":        "ok",
			"startedAt":     startupTime.UTC(),
			"uptimeSeconds": int64(time.Since(startupTime).Seconds()),
		}, "Service is healthy")
	}
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}

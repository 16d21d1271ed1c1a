package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voxhub/whisperd/internal/api/handlers"
	"github.com/voxhub/whisperd/internal/api/middleware"
	"github.com/voxhub/whisperd/internal/auth"
	"github.com/voxhub/whisperd/internal/config"
	"github.com/voxhub/whisperd/internal/queue"
	"github.com/voxhub/whisperd/internal/store"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	queue *queue.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, qc *queue.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		queue: qc,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(float64(rt.cfg.Server.RateLimitRPS), rt.cfg.Server.RateLimitBurst)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	probes := []handlers.Probe{handlers.SidecarProbe("diarizer", rt.cfg.Diarize.BaseURL)}
	if rt.cfg.Engine.Backend != "openai" {
		probes = append(probes, handlers.SidecarProbe("engine", rt.cfg.Engine.LocalBaseURL))
	}
	health := handlers.NewHealthHandler(rt.db, rt.redis, probes...)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	results := store.NewResultStore(rt.redis, rt.cfg.Results.TTL)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.Auth.JWTSecret != "" {
			r.Use(rt.jwt.Authenticate)
		} else {
			slog.Warn("JWT_SECRET not set, API authentication disabled")
		}

		jobsH := handlers.NewJobsHandler(rt.queue, results)
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", jobsH.Submit)
			r.Get("/{id}", jobsH.Get)
		})
	})

	return r
}

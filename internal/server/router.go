package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/inkwell/inkwell/internal/handler"
	"github.com/inkwell/inkwell/internal/metrics"
	"github.com/inkwell/inkwell/internal/middleware"
	"github.com/inkwell/inkwell/internal/repository"
	"github.com/inkwell/inkwell/internal/service"
)

// RouterConfig holds the HTTP-facing settings of the router.
type RouterConfig struct {
	Version            string
	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
}

// Dependencies are the components the router wires into handlers.
// Cache and Limiter may be nil.
type Dependencies struct {
	Repo    repository.PostRepository
	Cache   handler.HealthChecker
	Limiter middleware.Limiter
	Metrics *metrics.InMemoryRecorder
	Logger  *slog.Logger
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig, deps Dependencies) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewInMemory()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}

	postService := service.NewPostService(deps.Repo, deps.Metrics)

	h := handler.New(cfg.Version)
	healthHandler := handler.NewHealthHandler(deps.Repo.Name(), deps.Repo, deps.Cache)
	metricsHandler := handler.NewMetricsHandler(deps.Metrics)
	postHandler := handler.NewPostHandler(postService, deps.Logger)

	r := chi.NewRouter()

	// 404 and 405 handlers are set first so mounted routers inherit them.
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger, cfg.IsDevelopment))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Index)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Route("/posts", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  deps.Logger,
			Limiter: deps.Limiter,
			Metrics: deps.Metrics,
		}))
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
		postHandler.Register(r)
	})

	return r
}

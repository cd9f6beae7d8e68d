package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inkwell/inkwell/internal/cache"
	"github.com/inkwell/inkwell/internal/config"
	"github.com/inkwell/inkwell/internal/metrics"
	"github.com/inkwell/inkwell/internal/migrations"
	"github.com/inkwell/inkwell/internal/repository"
	"github.com/inkwell/inkwell/internal/server"
	"github.com/inkwell/inkwell/internal/storage"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server until SIGINT or SIGTERM.

The DATABASE_URL scheme selects the backend. When REDIS_URL is set and
RATE_LIMIT_ENABLED is true, /posts is rate limited per client IP.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}

	deps := server.Dependencies{
		Repo:    repo,
		Metrics: metrics.NewInMemory(),
		Logger:  logger,
	}

	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", storage.Redact(cfg.RedisURL)),
			)
			_ = repo.Close()
			return fmt.Errorf("connect to redis: %s", sanitizeError(err, cfg.RedisURL))
		}
		logger.Info("connected to Redis")
		deps.Cache = redisCache
	}

	if cfg.RateLimitActive() {
		limiter, err := cache.NewIPRateLimiter(redisCache, cfg.RateLimitRPS, cfg.RateLimitBurst)
		if err != nil {
			_ = redisCache.Close()
			_ = repo.Close()
			return err
		}
		deps.Limiter = limiter
		logger.Info("rate limiting enabled",
			"rps", cfg.RateLimitRPS,
			"burst", cfg.RateLimitBurst,
		)
	}

	router := server.NewRouter(server.RouterConfig{
		Version:            opts.Version,
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, deps)

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown(repo.Name(), func(ctx context.Context) error {
		return repo.Close()
	})
	if redisCache != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return redisCache.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"backend", repo.Name(),
		"version", opts.Version,
	)

	return srv.Run(ctx)
}

// openRepository connects to DATABASE_URL and, for Postgres with
// AUTO_MIGRATE set, applies pending migrations first.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.PostRepository, error) {
	backend, err := storage.Scheme(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate && backend == storage.BackendPostgres {
		if err := migrateUp(ctx, cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}
	}

	repo, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", storage.Redact(cfg.DatabaseURL)),
		)
		return nil, fmt.Errorf("connect to database: %s", sanitizeError(err, cfg.DatabaseURL))
	}

	logger.Info("connected to database", "backend", repo.Name())
	return repo, nil
}

func migrateUp(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	db, err := migrations.Open(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("migrate: %s", sanitizeError(err, databaseURL))
	}
	defer db.Close()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, version := range applied {
		logger.Info("migration applied", "version", version)
	}
	return nil
}

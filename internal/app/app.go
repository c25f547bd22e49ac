package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vadim/neo-reach/internal/cache"
	"github.com/vadim/neo-reach/internal/config"
	httpcontroller "github.com/vadim/neo-reach/internal/controller/http"
	"github.com/vadim/neo-reach/internal/database"
	"github.com/vadim/neo-reach/internal/domain/reach/dao"
	"github.com/vadim/neo-reach/internal/domain/reach/estimator"
	"github.com/vadim/neo-reach/internal/domain/reach/policy"
	"github.com/vadim/neo-reach/internal/domain/reach/scheduler"
	"github.com/vadim/neo-reach/internal/domain/reach/service"
	"github.com/vadim/neo-reach/internal/httpx/response"
	"github.com/vadim/neo-reach/internal/httpx/upstream/instagram"
	"github.com/vadim/neo-reach/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	// Infrastructure, nil when not configured
	pg         *pgxpool.Pool
	redis      *redis.Client
	reachCache *cache.ReachCache

	reachPolicy *policy.Policy
	scheduler   *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         cfg.CORS.MaxAge,
	}))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	if err := app.initInfrastructure(ctx); err != nil {
		app.closeInfrastructure()
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	app.initDomains()
	app.registerRoutes()

	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(app.reachPolicy, cfg.Scheduler.Interval, logger)
	}

	return app, nil
}

// initInfrastructure connects to PostgreSQL and Redis when they are configured
func (a *App) initInfrastructure(ctx context.Context) error {
	if dsn := a.cfg.Database.PostgresDSN; dsn != "" {
		pool, err := database.NewPostgresPool(ctx, database.PoolConfig{
			DSN:          dsn,
			MaxConns:     a.cfg.Database.MaxOpenConns,
			MinConns:     a.cfg.Database.MaxIdleConns,
			ConnLifetime: a.cfg.Database.ConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.pg = pool
		a.logger.Info("connected to postgres")
	} else {
		a.logger.Warn("DATABASE_URL is empty, campaign endpoints are disabled")
	}

	if addr := a.cfg.Redis.Addr; addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.redis = client
		a.logger.Info("connected to redis", "addr", addr)
	}

	return nil
}

// initDomains initializes the reach domain (DAO, Service, Policy)
func (a *App) initDomains() {
	est := estimator.New(a.cfg.Reach.Coefficients())

	var (
		campaigns dao.CampaignRepository
		posts     dao.PostRepository
		snapshots dao.SnapshotRepository
		accounts  policy.AccountProvider
	)
	if a.pg != nil {
		campaigns = dao.NewCampaignPostgres(a.pg)
		posts = dao.NewPostPostgres(a.pg)
		snapshots = dao.NewSnapshotPostgres(a.pg)
		accounts = dao.NewAccountPostgres(a.pg)
	}

	reachService := service.New(est, campaigns, posts, snapshots, a.logger)
	if a.redis != nil {
		a.reachCache = cache.NewReachCache(a.redis, a.cfg.Redis.TTL)
		reachService.WithCache(a.reachCache)
	}

	a.reachPolicy = policy.New(reachService, accounts, a.logger)

	if a.cfg.Instagram.Enabled {
		igClient := instagram.New(
			instagram.WithBaseURL(a.cfg.Instagram.BaseURL),
			instagram.WithAPIVersion(a.cfg.Instagram.APIVersion),
		)
		a.reachPolicy.WithMetricsFetcher(&instagramMetricsAdapter{client: igClient})
	}

	if a.cfg.S3.Enabled {
		s3Storage := storage.NewS3Storage(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
		})
		a.reachPolicy.WithReportUploader(&s3ReportAdapter{storage: s3Storage})
	}
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	swaggerHandler := httpcontroller.NewSwaggerHandler("Neo-Reach Campaign Reach API", OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	a.router.Route("/api/v1", func(r chi.Router) {
		reachHandler := httpcontroller.NewReachHandler(a.reachPolicy)
		reachHandler.RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// readyHandler reports whether configured dependencies are reachable
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if a.pg != nil {
		if err := a.pg.Ping(ctx); err != nil {
			a.logger.Warn("postgres is not ready", "error", err)
			response.ServiceUnavailable(w, "postgres is not ready")
			return
		}
	}
	if a.reachCache != nil {
		if err := a.reachCache.Ping(ctx); err != nil {
			a.logger.Warn("redis is not ready", "error", err)
			response.ServiceUnavailable(w, "redis is not ready")
			return
		}
	}

	response.OK(w, map[string]string{"status": "ready"})
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.Shutdown(context.Background())
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	a.closeInfrastructure()
	if err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) closeInfrastructure() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", "error", err)
		}
		a.redis = nil
	}
	if a.pg != nil {
		a.pg.Close()
		a.pg = nil
	}
}

package main

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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/leadrecon/internal/adapter/fsm"
	handler "github.com/neomorfeo/leadrecon/internal/adapter/http"
	"github.com/neomorfeo/leadrecon/internal/adapter/memory"
	oteladapter "github.com/neomorfeo/leadrecon/internal/adapter/otel"
	"github.com/neomorfeo/leadrecon/internal/adapter/ratelimit"
	redisadapter "github.com/neomorfeo/leadrecon/internal/adapter/redis"
	riveradapter "github.com/neomorfeo/leadrecon/internal/adapter/river"
	"github.com/neomorfeo/leadrecon/internal/adapter/sqlite"
	"github.com/neomorfeo/leadrecon/internal/app"
	"github.com/neomorfeo/leadrecon/internal/config"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

const (
	serviceName     = "leadrecon"
	serviceVersion  = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("leadrecon stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	providers, err := oteladapter.Setup(ctx, oteladapter.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			logger.Error("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := oteladapter.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	invalid, closeInvalid, err := newInvalidLeadStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("invalid lead store: %w", err)
	}
	defer closeInvalid()

	// The sweep worker is registered before the services exist: they need
	// the client to send notifications.
	sweeps := &riveradapter.SweepWorker{}
	riverOpts := riveradapter.Options{Sweeps: sweeps, Logger: logger}
	if cfg.SweepScheduler == config.SchedulerRiver {
		riverOpts.SweepInterval = cfg.SweepInterval
	}
	client, err := riveradapter.Setup(ctx, db, riverOpts)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	notifier := oteladapter.NewTracingNotifier(riveradapter.NewNotifier(client))

	// --- Application ---
	services := newServices(cfg, store, invalid, notifier, metrics, logger)
	sweeps.Sweep = func(ctx context.Context) error {
		out, ran := services.Watcher.Sweep(ctx)
		if !ran {
			logger.InfoContext(ctx, "sweep skipped, one is already running")
			return nil
		}
		return out.Err
	}

	if err := client.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := client.Stop(sctx); err != nil {
			logger.Error("river shutdown failed", "error", err)
		}
	}()

	if cfg.SweepScheduler == config.SchedulerTicker && cfg.SweepInterval > 0 {
		stopTicker := services.Watcher.Start(ctx, cfg.SweepInterval)
		defer stopTicker()
	}

	// --- Adapters (in) ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(services, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("leadrecon listening",
			"addr", srv.Addr,
			"docs", "http://localhost:"+cfg.Port+"/docs",
			"sweep_scheduler", cfg.SweepScheduler,
			"sweep_interval", cfg.SweepInterval.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// newServices wires the application layer over traced, rate-limited ports.
func newServices(
	cfg config.Config,
	store *sqlite.Store,
	invalid domain.InvalidLeadStore,
	notifier domain.Notifier,
	metrics domain.ReconciliationMetrics,
	logger *slog.Logger,
) handler.Services {
	leads := oteladapter.NewTracingLeadRepository(store.Leads)
	tenants := oteladapter.NewTracingTenantRepository(store.Tenants)
	memberships := oteladapter.NewTracingMembershipRepository(store.Memberships)
	identities := ratelimit.NewIdentityResolver(
		oteladapter.NewTracingIdentityResolver(store.Identities),
		cfg.IdentityRPS, cfg.IdentityBurst,
	)

	leadValidator := fsm.NewLeadValidator()

	promotions := app.NewPromotionService(leads, tenants, identities, memberships, leadValidator, logger)
	probes := app.NewProbes(tenants, identities, memberships)
	batch := app.NewBatchValidator(probes, cfg.ValidateConcurrency, logger)
	remediator := app.NewRemediator(leads, promotions, leadValidator, cfg.ValidateConcurrency, logger)
	recon := app.NewReconciliationService(leads, batch, remediator, invalid, notifier, metrics, logger)

	return handler.Services{
		Leads:          app.NewLeadService(leads, leadValidator),
		Tenants:        app.NewTenantService(tenants, fsm.NewTenantValidator()),
		Identities:     app.NewIdentityService(store.Identities),
		Promotions:     promotions,
		Reconciliation: recon,
		Watcher:        app.NewWatcher(recon, notifier, logger),
	}
}

// newInvalidLeadStore returns the Redis-backed set when REDIS_ADDR is set and
// the in-process one otherwise.
func newInvalidLeadStore(ctx context.Context, cfg config.Config) (domain.InvalidLeadStore, func(), error) {
	if cfg.RedisAddr == "" {
		return memory.NewInvalidLeadStore(), func() {}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("pinging redis at %s: %w", cfg.RedisAddr, err)
	}

	store := redisadapter.NewInvalidLeadStore(rdb, redisadapter.DefaultKey, cfg.InvalidSetTTL)
	return store, func() { rdb.Close() }, nil
}

func newRouter(services handler.Services, logger *slog.Logger) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))
	router.Use(requestLogger(logger))

	api := humachi.New(router, huma.DefaultConfig(serviceName, serviceVersion))
	handler.Register(api, services)

	return router
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "http request",
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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/auth"
	"github.com/frahmantamala/uniform-manager/internal/core/events"
	"github.com/frahmantamala/uniform-manager/internal/idempotency"
	"github.com/frahmantamala/uniform-manager/internal/importer"
	"github.com/frahmantamala/uniform-manager/internal/metrics"
	"github.com/frahmantamala/uniform-manager/internal/request"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/frahmantamala/uniform-manager/internal/transport"
	"github.com/frahmantamala/uniform-manager/internal/transport/rest"
	"github.com/frahmantamala/uniform-manager/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Redis    *idempotency.RedisStore
	Bus      *events.EventBus
	Router   *chi.Mux
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Bus.Wait()
		deps.close()
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	gdb, err := initGorm(deps.DB, cfg.Observability.Logging.Level == "debug")
	if err != nil {
		return err
	}

	m := metrics.New(deps.Registry)
	registerEventSubscribers(deps.Bus, lg)

	repos := newRepositories(deps.DB, gdb)
	svcs := newServices(cfg, repos, deps.Bus, m, lg)

	var guard request.SubmissionGuard
	var redisPinger rest.Pinger
	if deps.Redis != nil {
		g, err := idempotency.NewGuard(deps.Redis, cfg.Redis.IdempotencyTTL, "requests")
		if err != nil {
			return err
		}
		guard = g
		redisPinger = deps.Redis
	}

	base := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Stock:    stock.NewHandler(base, svcs.Stock),
		Staff:    staff.NewHandler(base, svcs.Staff),
		Role:     role.NewHandler(base, svcs.Roles),
		Request:  request.NewHandler(base, svcs.Requests, guard),
		Importer: importer.NewHandler(base, svcs.Importer),
	}

	opts := rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthEnabled:    cfg.Security.AuthEnabled,
		Tokens:         auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenTTL, cfg.Security.Issuer),
	}
	if cfg.Observability.Metrics.Enabled {
		opts.MetricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}
	if !cfg.Security.AuthEnabled {
		lg.Warn("authentication disabled, every request acts as the local admin operator")
	}

	rest.RegisterAllRoutes(deps.Router, rest.NewHealthHandler(deps.DB.DB, redisPinger), handlers, opts, lg)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var store *idempotency.RedisStore
	if config.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), config.Redis.DialTimeout+time.Second)
		defer cancel()
		store, err = idempotency.NewRedisStore(ctx, config.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
	} else {
		lg.Info("redis not configured, Idempotency-Key headers are ignored")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "uniform_manager"),
	)

	return &Dependencies{
		Config:   config,
		DB:       db,
		Redis:    store,
		Bus:      events.NewEventBus(lg),
		Router:   chi.NewRouter(),
		Registry: registry,
		Logger:   lg,
	}, nil
}

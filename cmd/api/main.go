// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agenciasuportapoio350-spec/part2/internal/admin"
	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
	"github.com/agenciasuportapoio350-spec/part2/internal/auth"
	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/config"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/dashboard"
	"github.com/agenciasuportapoio350-spec/part2/internal/health"
	"github.com/agenciasuportapoio350-spec/part2/internal/lead"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
	"github.com/agenciasuportapoio350-spec/part2/internal/payment"
	"github.com/agenciasuportapoio350-spec/part2/internal/server"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token service initialized",
		"algorithm", "HS256",
		"ttl", tokens.TTL().String(),
	)

	hasher := core.Argon2Hasher{}

	notifier := audit.NewNopNotifier()
	healthDeps := []health.Dependency{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redis},
	}
	if cfg.Broker.URL != "" {
		publisher, pubErr := audit.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if pubErr != nil {
			logger.Warn("audit stream disabled", "error", pubErr)
		} else {
			notifier = publisher
			healthDeps = append(healthDeps, health.Dependency{
				Name: "broker", Checker: publisher, Optional: true,
			})
			logger.Info("audit stream connected", "exchange", cfg.Broker.Exchange)
		}
	}

	userRepo := user.NewRepository(db.DB)
	auditRepo := audit.NewRepository(db.DB)
	leadRepo := lead.NewRepository(db.DB)
	clientRepo := client.NewRepository(db.DB)
	taskRepo := task.NewRepository(db.DB)
	paymentRepo := payment.NewRepository(db.DB)

	created, err := admin.EnsureSuperAdmin(ctx, userRepo, hasher, cfg.Bootstrap, logger)
	if err != nil {
		return err
	}
	if !created {
		logger.Info("super admin already present")
	}

	userSvc := user.NewService(userRepo)
	guard := auth.NewGuard(tokens, userSvc)
	authenticator := middleware.Authenticator(guard)

	authSvc := auth.NewService(tokens, userSvc, hasher, logger)

	uow := admin.NewTxUnitOfWork(db.DB, func(tx core.DBTX) admin.Repositories {
		return admin.Repositories{
			Users: user.NewRepository(tx),
			Audit: audit.NewRecorder(audit.NewRepository(tx)),
			Owned: []admin.OwnedRecords{
				lead.NewRepository(tx),
				client.NewRepository(tx),
				task.NewRepository(tx),
				payment.NewRepository(tx),
			},
		}
	})

	adminSvc := admin.NewService(admin.Deps{
		UnitOfWork: uow,
		Readers: admin.Readers{
			Users:    userRepo,
			Audit:    auditRepo,
			Leads:    leadRepo,
			Clients:  clientRepo,
			Tasks:    taskRepo,
			Payments: paymentRepo,
		},
		Tokens:   tokens,
		Hasher:   hasher,
		Notifier: notifier,
		Logger:   logger,
	})

	systemHandler := admin.NewSystemHandler(admin.SystemConfig{
		App:        cfg.App,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	healthHandler := health.NewHandler(healthDeps...)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(telemetry.Tracer))
	router.Use(middleware.Logger(logger))
	router.Use(chimw.Recoverer)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			BypassFunc: middleware.SkipHealthChecks,
			FailOpen:   true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	tiered := middleware.TieredRateLimiter(redis.Client, middleware.DefaultTiers)
	limited := func(next http.Handler) http.Handler {
		return authenticator(tiered(next))
	}

	router.Route("/api", func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator)
		user.NewHandler(userSvc).RegisterRoutes(r, limited)

		lead.NewHandler(
			lead.NewService(leadRepo, clientRepo, taskRepo, logger),
		).RegisterRoutes(r, limited)
		client.NewHandler(
			client.NewService(clientRepo, logger, taskRepo, paymentRepo),
		).RegisterRoutes(r, limited)
		task.NewHandler(
			task.NewService(taskRepo, clientRepo, leadRepo),
		).RegisterRoutes(r, limited)
		payment.NewHandler(
			payment.NewService(paymentRepo, clientRepo),
		).RegisterRoutes(r, limited)
		dashboard.NewHandler(
			dashboard.NewService(leadRepo, clientRepo, taskRepo, paymentRepo),
		).RegisterRoutes(r, limited)

		admin.NewHandler(
			adminSvc,
			systemHandler,
			audit.NewHandler(auditRepo),
		).RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := notifier.Close(); err != nil {
		logger.Error("audit stream close error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

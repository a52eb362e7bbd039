package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/assettrack-backend/api/routes"
	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/internal/assignments"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/internal/checkouts"
	"github.com/angelmondragon/assettrack-backend/internal/lifecycle"
	"github.com/angelmondragon/assettrack-backend/internal/maintenance"
	"github.com/angelmondragon/assettrack-backend/internal/transfers"
	"github.com/angelmondragon/assettrack-backend/pkg/config"
	"github.com/angelmondragon/assettrack-backend/pkg/db"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	"github.com/angelmondragon/assettrack-backend/pkg/metrics"
	"github.com/angelmondragon/assettrack-backend/pkg/migrate"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
	"github.com/angelmondragon/assettrack-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	services, err := buildServices(cfg, logg, dbClient, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, services, promhttp.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, reg prometheus.Registerer) (routes.Services, error) {
	conn := dbClient.DB()

	recorder, err := audit.NewRecorder(audit.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	journal, err := lifecycle.NewJournal(lifecycle.JournalParams{
		Audit:   recorder,
		Outbox:  outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics: metrics.NewLifecycleMetrics(reg),
		Logger:  logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	states := assets.NewStateStore(conn)
	guard := lifecycle.NewGuard()
	clock := lifecycle.Clock(time.Now)

	assetService, err := assets.NewService(assets.ServiceParams{
		DB:         dbClient,
		Repository: assets.NewRepository(conn),
		Audit:      recorder,
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	assignmentService, err := assignments.NewService(assignments.ServiceParams{
		DB:         dbClient,
		Repository: assignments.NewRepository(conn),
		States:     states,
		Guard:      guard,
		Journal:    journal,
		Clock:      clock,
	})
	if err != nil {
		return routes.Services{}, err
	}

	checkoutService, err := checkouts.NewService(checkouts.ServiceParams{
		DB:         dbClient,
		Repository: checkouts.NewRepository(conn),
		States:     states,
		Guard:      guard,
		Journal:    journal,
		Clock:      clock,
	})
	if err != nil {
		return routes.Services{}, err
	}

	transferService, err := transfers.NewService(transfers.ServiceParams{
		DB:              dbClient,
		Repository:      transfers.NewRepository(conn),
		States:          states,
		Guard:           guard,
		Journal:         journal,
		Clock:           clock,
		RequireApproval: cfg.Lifecycle.TransferRequiresApproval,
	})
	if err != nil {
		return routes.Services{}, err
	}

	maintenanceService, err := maintenance.NewService(maintenance.ServiceParams{
		DB:           dbClient,
		Repository:   maintenance.NewRepository(conn),
		States:       states,
		Journal:      journal,
		Clock:        clock,
		UpcomingDays: cfg.Lifecycle.DefaultUpcomingDays,
	})
	if err != nil {
		return routes.Services{}, err
	}

	auditService, err := audit.NewService(audit.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Assets:      assetService,
		Assignments: assignmentService,
		Checkouts:   checkoutService,
		Transfers:   transferService,
		Maintenance: maintenanceService,
		Audit:       auditService,
	}, nil
}

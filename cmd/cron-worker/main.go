package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/internal/checkouts"
	"github.com/angelmondragon/assettrack-backend/internal/cron"
	"github.com/angelmondragon/assettrack-backend/internal/lifecycle"
	"github.com/angelmondragon/assettrack-backend/internal/maintenance"
	"github.com/angelmondragon/assettrack-backend/pkg/config"
	"github.com/angelmondragon/assettrack-backend/pkg/db"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	"github.com/angelmondragon/assettrack-backend/pkg/metrics"
	"github.com/angelmondragon/assettrack-backend/pkg/migrate"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
	"github.com/angelmondragon/assettrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.JobLockKey("cron"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry, err := buildRegistry(cfg, logg, dbClient, metricsCollector)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// buildRegistry wires the reminder and retention jobs. The reminder jobs only
// read workflow state; the journal exists because the services require one.
func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, collector *metrics.CronJobMetrics) (*cron.Registry, error) {
	conn := dbClient.DB()
	outboxRepo := outbox.NewRepository(conn)
	outboxService := outbox.NewService(outboxRepo, logg)

	recorder, err := audit.NewRecorder(audit.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	journal, err := lifecycle.NewJournal(lifecycle.JournalParams{
		Audit:  recorder,
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		return nil, err
	}
	states := assets.NewStateStore(conn)
	clock := lifecycle.Clock(time.Now)

	checkoutService, err := checkouts.NewService(checkouts.ServiceParams{
		DB:         dbClient,
		Repository: checkouts.NewRepository(conn),
		States:     states,
		Guard:      lifecycle.NewGuard(),
		Journal:    journal,
		Clock:      clock,
	})
	if err != nil {
		return nil, err
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
		return nil, err
	}

	checkoutJob, err := cron.NewCheckoutReminderJob(cron.CheckoutReminderJobParams{
		Logger:    logg,
		DB:        dbClient,
		Checkouts: checkoutService,
		Outbox:    outboxService,
		Metrics:   collector,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout reminder job: %w", err)
	}
	maintenanceJob, err := cron.NewMaintenanceReminderJob(cron.MaintenanceReminderJobParams{
		Logger:      logg,
		DB:          dbClient,
		Maintenance: maintenanceService,
		Outbox:      outboxService,
		Metrics:     collector,
		WindowDays:  cfg.Lifecycle.DefaultUpcomingDays,
	})
	if err != nil {
		return nil, fmt.Errorf("maintenance reminder job: %w", err)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Cron.OutboxRetention,
	})
	if err != nil {
		return nil, fmt.Errorf("outbox retention job: %w", err)
	}

	return cron.NewRegistry(checkoutJob, maintenanceJob, retentionJob), nil
}

package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	"github.com/angelmondragon/assettrack-backend/pkg/metrics"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox/payloads"
)

type maintenanceReader interface {
	Overdue(ctx context.Context) ([]models.AssetMaintenance, error)
	Upcoming(ctx context.Context, windowDays int) ([]models.AssetMaintenance, error)
}

type MaintenanceReminderJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Maintenance maintenanceReader
	Outbox      eventEmitter
	Metrics     *metrics.CronJobMetrics
	WindowDays  int
}

// NewMaintenanceReminderJob queues maintenance_due for records that are
// overdue or scheduled inside the window. Each record is reminded once.
func NewMaintenanceReminderJob(params MaintenanceReminderJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.DB == nil:
		return nil, fmt.Errorf("db runner required")
	case params.Maintenance == nil:
		return nil, fmt.Errorf("maintenance reader required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox required")
	}
	return &maintenanceReminderJob{
		logg:        params.Logger,
		db:          params.DB,
		maintenance: params.Maintenance,
		outbox:      params.Outbox,
		metrics:     params.Metrics,
		windowDays:  params.WindowDays,
		now:         time.Now,
	}, nil
}

type maintenanceReminderJob struct {
	logg        *logger.Logger
	db          txRunner
	maintenance maintenanceReader
	outbox      eventEmitter
	metrics     *metrics.CronJobMetrics
	windowDays  int
	now         func() time.Time
}

func (j *maintenanceReminderJob) Name() string { return "maintenance-due-reminder" }

func (j *maintenanceReminderJob) Run(ctx context.Context) error {
	overdue, err := j.maintenance.Overdue(ctx)
	if err != nil {
		return fmt.Errorf("load overdue maintenance: %w", err)
	}
	upcoming, err := j.maintenance.Upcoming(ctx, j.windowDays)
	if err != nil {
		return fmt.Errorf("load upcoming maintenance: %w", err)
	}

	now := j.now().UTC()
	events := make([]outbox.DomainEvent, 0, len(overdue)+len(upcoming))
	for _, row := range overdue {
		events = append(events, j.event(row, true, now))
	}
	for _, row := range upcoming {
		events = append(events, j.event(row, false, now))
	}

	emitted, errs := emitAll(ctx, j.db, j.outbox, events)
	j.metrics.AddEmitted(j.Name(), string(enums.EventMaintenanceDue), emitted)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"overdue":     len(overdue),
		"upcoming":    len(upcoming),
		"window_days": j.windowDays,
		"emitted":     emitted,
		"failed":      len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "maintenance reminders queued")
	return errs
}

func (j *maintenanceReminderJob) event(row models.AssetMaintenance, overdue bool, now time.Time) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventMaintenanceDue,
		AggregateType: enums.AggregateMaintenance,
		AggregateID:   row.ID,
		Actor:         systemActor,
		Version:       1,
		OccurredAt:    now,
		Data: payloads.MaintenanceDueEvent{
			MaintenanceID: row.ID,
			AssetID:       row.AssetID,
			Type:          row.MaintenanceType,
			Priority:      row.Priority,
			ScheduledAt:   row.ScheduledDate.UTC(),
			Overdue:       overdue,
		},
	}
}

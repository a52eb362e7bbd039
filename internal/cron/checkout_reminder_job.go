package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	"github.com/angelmondragon/assettrack-backend/pkg/metrics"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox/payloads"
)

type overdueCheckouts interface {
	Overdue(ctx context.Context) ([]models.AssetCheckout, error)
}

type CheckoutReminderJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Checkouts overdueCheckouts
	Outbox    eventEmitter
	Metrics   *metrics.CronJobMetrics
}

// NewCheckoutReminderJob queues one checkout_overdue event per overdue checkout.
func NewCheckoutReminderJob(params CheckoutReminderJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.DB == nil:
		return nil, fmt.Errorf("db runner required")
	case params.Checkouts == nil:
		return nil, fmt.Errorf("checkout reader required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox required")
	}
	return &checkoutReminderJob{
		logg:      params.Logger,
		db:        params.DB,
		checkouts: params.Checkouts,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

type checkoutReminderJob struct {
	logg      *logger.Logger
	db        txRunner
	checkouts overdueCheckouts
	outbox    eventEmitter
	metrics   *metrics.CronJobMetrics
	now       func() time.Time
}

func (j *checkoutReminderJob) Name() string { return "overdue-checkout-reminder" }

func (j *checkoutReminderJob) Run(ctx context.Context) error {
	rows, err := j.checkouts.Overdue(ctx)
	if err != nil {
		return fmt.Errorf("load overdue checkouts: %w", err)
	}
	now := j.now().UTC()
	events := make([]outbox.DomainEvent, 0, len(rows))
	for _, row := range rows {
		if row.ExpectedReturnAt == nil {
			continue
		}
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventCheckoutOverdue,
			AggregateType: enums.AggregateCheckout,
			AggregateID:   row.ID,
			Actor:         systemActor,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.CheckoutOverdueEvent{
				CheckoutID:       row.ID,
				AssetID:          row.AssetID,
				UserID:           row.UserID,
				ExpectedReturnAt: row.ExpectedReturnAt.UTC(),
				DaysOverdue:      daysOverdue(*row.ExpectedReturnAt, now),
			},
		})
	}

	emitted, err := emitAll(ctx, j.db, j.outbox, events)
	j.metrics.AddEmitted(j.Name(), string(enums.EventCheckoutOverdue), emitted)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"overdue": len(events),
		"emitted": emitted,
	})
	j.logg.Info(logCtx, "overdue checkout reminders queued")
	return err
}

// daysOverdue counts started days past the due time, at least one.
func daysOverdue(due, now time.Time) int {
	days := int(now.Sub(due) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

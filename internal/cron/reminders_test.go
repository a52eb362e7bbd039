package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db"
	"github.com/angelmondragon/assettrack-backend/pkg/db/dbtest"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox/payloads"
)

type stubCheckouts struct {
	rows []models.AssetCheckout
	err  error
}

func (s stubCheckouts) Overdue(context.Context) ([]models.AssetCheckout, error) { return s.rows, s.err }

type stubMaintenance struct {
	overdue    []models.AssetMaintenance
	upcoming   []models.AssetMaintenance
	windowDays int
}

func (s *stubMaintenance) Overdue(context.Context) ([]models.AssetMaintenance, error) {
	return s.overdue, nil
}

func (s *stubMaintenance) Upcoming(_ context.Context, windowDays int) ([]models.AssetMaintenance, error) {
	s.windowDays = windowDays
	return s.upcoming, nil
}

func queued(t *testing.T, client *db.Client, eventType enums.OutboxEventType) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Where("event_type = ?", eventType).Find(&rows).Error)
	return rows
}

func decodeData(t *testing.T, row models.OutboxEvent, into any) {
	t.Helper()
	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, into))
}

func TestCheckoutReminderQueuesOncePerCheckout(t *testing.T) {
	client := dbtest.Open(t)
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	due := now.Add(-50 * time.Hour)
	checkout := models.AssetCheckout{ID: uuid.New(), AssetID: uuid.New(), UserID: uuid.New(), ExpectedReturnAt: &due}

	jobIface, err := NewCheckoutReminderJob(CheckoutReminderJobParams{
		Logger:    testLogger(),
		DB:        client,
		Checkouts: stubCheckouts{rows: []models.AssetCheckout{checkout, {ID: uuid.New()}}},
		Outbox:    outbox.NewService(outbox.NewRepository(client.DB()), nil),
	})
	require.NoError(t, err)
	job := jobIface.(*checkoutReminderJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	rows := queued(t, client, enums.EventCheckoutOverdue)
	require.Len(t, rows, 1)
	assert.Equal(t, checkout.ID, rows[0].AggregateID)
	assert.Equal(t, enums.AggregateCheckout, rows[0].AggregateType)

	var data payloads.CheckoutOverdueEvent
	decodeData(t, rows[0], &data)
	assert.Equal(t, 2, data.DaysOverdue)
	assert.Equal(t, checkout.UserID, data.UserID)
}

func TestCheckoutReminderReadError(t *testing.T) {
	client := dbtest.Open(t)
	job, err := NewCheckoutReminderJob(CheckoutReminderJobParams{
		Logger:    testLogger(),
		DB:        client,
		Checkouts: stubCheckouts{err: errors.New("db down")},
		Outbox:    outbox.NewService(outbox.NewRepository(client.DB()), nil),
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

func TestDaysOverdueIsAtLeastOne(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, daysOverdue(now.Add(-time.Hour), now))
	assert.Equal(t, 1, daysOverdue(now.Add(-47*time.Hour), now))
	assert.Equal(t, 3, daysOverdue(now.Add(-72*time.Hour), now))
}

func TestMaintenanceReminderFlagsOverdue(t *testing.T) {
	client := dbtest.Open(t)
	late := models.AssetMaintenance{ID: uuid.New(), AssetID: uuid.New(), MaintenanceType: enums.MaintenanceTypeRoutine, Priority: enums.MaintenancePriorityHigh}
	soon := models.AssetMaintenance{ID: uuid.New(), AssetID: uuid.New(), MaintenanceType: enums.MaintenanceTypePreventive, Priority: enums.MaintenancePriorityLow}
	reader := &stubMaintenance{overdue: []models.AssetMaintenance{late}, upcoming: []models.AssetMaintenance{soon}}

	job, err := NewMaintenanceReminderJob(MaintenanceReminderJobParams{
		Logger:      testLogger(),
		DB:          client,
		Maintenance: reader,
		Outbox:      outbox.NewService(outbox.NewRepository(client.DB()), nil),
		WindowDays:  14,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 14, reader.windowDays)

	rows := queued(t, client, enums.EventMaintenanceDue)
	require.Len(t, rows, 2)
	flags := map[uuid.UUID]bool{}
	for _, row := range rows {
		var data payloads.MaintenanceDueEvent
		decodeData(t, row, &data)
		flags[data.MaintenanceID] = data.Overdue
	}
	assert.Equal(t, map[uuid.UUID]bool{late.ID: true, soon.ID: false}, flags)
}

type flakyEmitter struct {
	fail map[uuid.UUID]bool
}

func (f flakyEmitter) EmitIfNotExists(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) (bool, error) {
	if f.fail[event.AggregateID] {
		return false, errors.New("insert failed")
	}
	return true, nil
}

func TestEmitAllContinuesPastFailures(t *testing.T) {
	bad1, bad2, good := uuid.New(), uuid.New(), uuid.New()
	events := []outbox.DomainEvent{
		{EventType: enums.EventMaintenanceDue, AggregateID: bad1},
		{EventType: enums.EventMaintenanceDue, AggregateID: good},
		{EventType: enums.EventMaintenanceDue, AggregateID: bad2},
	}
	emitted, err := emitAll(context.Background(), passthroughTx{}, flakyEmitter{fail: map[uuid.UUID]bool{bad1: true, bad2: true}}, events)
	assert.Equal(t, 1, emitted)
	assert.Len(t, multierr.Errors(err), 2)
}

package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/internal/lifecycle/lifecycletest"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *lifecycletest.Harness) {
	t.Helper()
	h := lifecycletest.New(t)
	svc, err := NewService(ServiceParams{
		DB:         h.Client,
		Repository: NewRepository(h.DB),
		States:     h.States,
		Journal:    h.Journal,
		Clock:      h.Clock(),
	})
	require.NoError(t, err)
	return svc, h
}

func schedule(t *testing.T, svc Service, h *lifecycletest.Harness, assetID uuid.UUID, kind enums.MaintenanceType, in time.Duration) *models.AssetMaintenance {
	t.Helper()
	record, err := svc.Schedule(context.Background(), lifecycletest.Actor(), ScheduleInput{
		AssetID:       assetID,
		Type:          kind,
		Title:         "Service " + string(kind),
		Description:   "routine service visit",
		ScheduledDate: h.Now.Add(in),
	})
	require.NoError(t, err)
	return record
}

func TestScheduleMovesNextMaintenanceEarlierOnly(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)

	first := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, 10*24*time.Hour)
	assert.Equal(t, enums.MaintenanceStatusScheduled, first.Status)
	assert.Equal(t, enums.MaintenancePriorityMedium, first.Priority)

	reloaded := h.Asset(t, asset.ID)
	require.NotNil(t, reloaded.NextMaintenanceDate)
	assert.True(t, reloaded.NextMaintenanceDate.Equal(first.ScheduledDate))
	assert.Equal(t, enums.AssetStatusAvailable, reloaded.Status)

	schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, 20*24*time.Hour)
	reloaded = h.Asset(t, asset.ID)
	assert.True(t, reloaded.NextMaintenanceDate.Equal(first.ScheduledDate))

	earlier := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeCorrective, 2*24*time.Hour)
	reloaded = h.Asset(t, asset.ID)
	assert.True(t, reloaded.NextMaintenanceDate.Equal(earlier.ScheduledDate))
	assert.Equal(t, int64(3), h.AuditCount(t, enums.AuditActionMaintenanceScheduled))
}

func TestScheduleValidation(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	ctx := context.Background()
	negative := decimal.NewFromInt(-5)

	base := ScheduleInput{
		AssetID:       asset.ID,
		Type:          enums.MaintenanceTypePreventive,
		Title:         "Filter swap",
		Description:   "swap filters",
		ScheduledDate: h.Now.Add(time.Hour),
	}

	for name, mutate := range map[string]func(*ScheduleInput){
		"missing title":       func(in *ScheduleInput) { in.Title = "  " },
		"missing description": func(in *ScheduleInput) { in.Description = "" },
		"bad type":            func(in *ScheduleInput) { in.Type = "overhaul" },
		"bad priority":        func(in *ScheduleInput) { in.Priority = "urgent" },
		"negative cost":       func(in *ScheduleInput) { in.Cost = &negative },
	} {
		input := base
		mutate(&input)
		_, err := svc.Schedule(ctx, lifecycletest.Actor(), input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), name)
	}

	input := base
	input.AssetID = uuid.New()
	_, err := svc.Schedule(ctx, lifecycletest.Actor(), input)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestStartPutsAssetIntoMaintenance(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, time.Hour)
	actor := lifecycletest.Actor()

	started, err := svc.Start(context.Background(), actor, record.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusInProgress, started.Status)
	require.NotNil(t, started.PerformedBy)
	assert.Equal(t, *actor.UserID, *started.PerformedBy)
	assert.Equal(t, enums.AssetStatusMaintenance, h.Asset(t, asset.ID).Status)

	_, err = svc.Start(context.Background(), actor, record.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCompleteRestoresAssetAndSchedulesNext(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypePreventive, time.Hour)
	ctx := context.Background()

	_, err := svc.Start(ctx, lifecycletest.Actor(), record.ID, nil)
	require.NoError(t, err)

	cost := decimal.RequireFromString("150.50")
	downtime := 4
	notes := "replaced belt"
	done, err := svc.Complete(ctx, lifecycletest.Actor(), record.ID, CompleteInput{
		Cost:           &cost,
		DowntimeHours:  &downtime,
		Notes:          &notes,
		AssetCondition: enums.AssetConditionExcellent,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedDate)
	assert.True(t, done.CompletedDate.Equal(h.Now))
	require.NotNil(t, done.Notes)
	assert.Equal(t, "replaced belt", *done.Notes)

	reloaded := h.Asset(t, asset.ID)
	assert.Equal(t, enums.AssetStatusAvailable, reloaded.Status)
	assert.Equal(t, enums.AssetConditionExcellent, reloaded.Condition)
	require.NotNil(t, reloaded.NextMaintenanceDate)
	assert.True(t, reloaded.NextMaintenanceDate.Equal(time.Date(2026, time.August, 4, 0, 0, 0, 0, time.UTC)))

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Completed)
	assert.True(t, stats.TotalCost.Equal(cost))

	_, err = svc.Complete(ctx, lifecycletest.Actor(), record.ID, CompleteInput{AssetCondition: enums.AssetConditionGood})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCompleteCorrectiveClearsNextMaintenance(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeCorrective, time.Hour)
	require.NotNil(t, h.Asset(t, asset.ID).NextMaintenanceDate)

	_, err := svc.Complete(context.Background(), lifecycletest.Actor(), record.ID, CompleteInput{AssetCondition: enums.AssetConditionGood})
	require.NoError(t, err)
	assert.Nil(t, h.Asset(t, asset.ID).NextMaintenanceDate)
}

func TestCompleteValidation(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, time.Hour)
	ctx := context.Background()

	_, err := svc.Complete(ctx, lifecycletest.Actor(), record.ID, CompleteInput{AssetCondition: "mint"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	hours := -1
	_, err = svc.Complete(ctx, lifecycletest.Actor(), record.ID, CompleteInput{AssetCondition: enums.AssetConditionGood, DowntimeHours: &hours})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Complete(ctx, lifecycletest.Actor(), uuid.New(), CompleteInput{AssetCondition: enums.AssetConditionGood})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelAppendsReasonAndReleasesAsset(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, time.Hour)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, lifecycletest.Actor(), record.ID, " ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Start(ctx, lifecycletest.Actor(), record.ID, nil)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, lifecycletest.Actor(), record.ID, "vendor unavailable")
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Notes)
	assert.Equal(t, "Cancellation reason: vendor unavailable", *cancelled.Notes)
	assert.Equal(t, enums.AssetStatusAvailable, h.Asset(t, asset.ID).Status)

	_, err = svc.Cancel(ctx, lifecycletest.Actor(), record.ID, "again")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelKeepsStatusOwnedByAnotherWorkflow(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, func(a *models.Asset) { a.Status = enums.AssetStatusRepair })
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeCorrective, time.Hour)

	_, err := svc.Cancel(context.Background(), lifecycletest.Actor(), record.ID, "not needed")
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusRepair, h.Asset(t, asset.ID).Status)
}

func TestUpdateAppendsNotesWithoutTouchingAsset(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	ctx := context.Background()
	original := "bring ladder"
	record, err := svc.Schedule(ctx, lifecycletest.Actor(), ScheduleInput{
		AssetID:       asset.ID,
		Type:          enums.MaintenanceTypeRoutine,
		Title:         "Inspect",
		Description:   "inspect mounts",
		ScheduledDate: h.Now.Add(time.Hour),
		Notes:         &original,
	})
	require.NoError(t, err)

	title := "Inspect mounts"
	priority := enums.MaintenancePriorityHigh
	more := "bring torque wrench"
	updated, err := svc.Update(ctx, lifecycletest.Actor(), record.ID, UpdateInput{Title: &title, Priority: &priority, Notes: &more})
	require.NoError(t, err)
	assert.Equal(t, "Inspect mounts", updated.Title)
	assert.Equal(t, enums.MaintenancePriorityHigh, updated.Priority)
	assert.Equal(t, "bring ladder\n\nbring torque wrench", *updated.Notes)
	assert.Equal(t, enums.AssetStatusAvailable, h.Asset(t, asset.ID).Status)
	assert.Equal(t, int64(1), h.AuditCount(t, enums.AuditActionMaintenanceUpdated))

	bad := enums.MaintenancePriority("asap")
	_, err = svc.Update(ctx, lifecycletest.Actor(), record.ID, UpdateInput{Priority: &bad})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestOverdueAndUpcoming(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	ctx := context.Background()

	past := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, -48*time.Hour)
	soon := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, 5*24*time.Hour)
	schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, 45*24*time.Hour)

	overdue, err := svc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, past.ID, overdue[0].ID)

	upcoming, err := svc.Upcoming(ctx, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, soon.ID, upcoming[0].ID)

	upcoming, err = svc.Upcoming(ctx, 60)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	_, err = svc.Upcoming(ctx, -1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.Scheduled)
	assert.Equal(t, int64(1), stats.Overdue)
	assert.True(t, stats.TotalCost.IsZero())
}

func TestListFiltersAndPages(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, time.Duration(i+1)*time.Hour)
	}
	schedule(t, svc, h, asset.ID, enums.MaintenanceTypeEmergency, time.Hour)

	result, err := svc.List(ctx, ListParams{AssetID: &asset.ID, Type: enums.MaintenanceTypeRoutine})
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)

	_, err = svc.List(ctx, ListParams{Priority: "urgent"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRoutineMaintenanceRoundTrip(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, 48*time.Hour)

	_, err := svc.Start(ctx, lifecycletest.Actor(), record.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusMaintenance, h.Asset(t, asset.ID).Status)

	done, err := svc.Complete(ctx, lifecycletest.Actor(), record.ID, CompleteInput{AssetCondition: enums.AssetConditionFair})
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusCompleted, done.Status)

	reloaded := h.Asset(t, asset.ID)
	assert.Equal(t, enums.AssetStatusAvailable, reloaded.Status)
	assert.Equal(t, enums.AssetConditionFair, reloaded.Condition)
	require.NotNil(t, reloaded.NextMaintenanceDate)
	assert.True(t, reloaded.NextMaintenanceDate.Equal(time.Date(2026, time.June, 4, 0, 0, 0, 0, time.UTC)))

	actions := make([]enums.AuditAction, 0, 3)
	for _, row := range h.AuditFor(t, record.ID) {
		actions = append(actions, row.Action)
	}
	assert.ElementsMatch(t, []enums.AuditAction{
		enums.AuditActionMaintenanceScheduled,
		enums.AuditActionMaintenanceStarted,
		enums.AuditActionMaintenanceCompleted,
	}, actions)
}

func TestCompleteKeepsPartsAndDowntimeFromUpdate(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeCorrective, time.Hour)

	parts := "fan, thermal paste"
	downtime := 6
	negative := -1
	_, err := svc.Update(ctx, lifecycletest.Actor(), record.ID, UpdateInput{DowntimeHours: &negative})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, lifecycletest.Actor(), record.ID, UpdateInput{PartsReplaced: &parts, DowntimeHours: &downtime})
	require.NoError(t, err)

	done, err := svc.Complete(ctx, lifecycletest.Actor(), record.ID, CompleteInput{AssetCondition: enums.AssetConditionGood})
	require.NoError(t, err)
	require.NotNil(t, done.PartsReplaced)
	assert.Equal(t, parts, *done.PartsReplaced)
	require.NotNil(t, done.DowntimeHours)
	assert.Equal(t, downtime, *done.DowntimeHours)
}

func TestCompleteRereadsRecordUnderAssetLock(t *testing.T) {
	svc, h := newTestService(t)
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypePreventive, time.Hour)
	_, err := svc.Start(context.Background(), lifecycletest.Actor(), record.ID, nil)
	require.NoError(t, err)

	// A cancel commits while completion waits for the asset row.
	h.AfterNextQuery(t, "assets", func(tx *gorm.DB) error {
		return tx.Model(&models.AssetMaintenance{}).Where("id = ?", record.ID).Update("status", enums.MaintenanceStatusCancelled).Error
	})

	_, err = svc.Complete(context.Background(), lifecycletest.Actor(), record.ID, CompleteInput{AssetCondition: enums.AssetConditionExcellent})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	reloaded := h.Asset(t, asset.ID)
	assert.Equal(t, enums.AssetStatusMaintenance, reloaded.Status)
	assert.Equal(t, enums.AssetConditionGood, reloaded.Condition)
	assert.Equal(t, int64(0), h.AuditCount(t, enums.AuditActionMaintenanceCompleted))
}

func TestStartRollsBackWhenJournalFails(t *testing.T) {
	svc, h := newTestService(t)
	broken, err := NewService(ServiceParams{
		DB:         h.Client,
		Repository: NewRepository(h.DB),
		States:     h.States,
		Journal:    h.FailingJournal(t),
		Clock:      h.Clock(),
	})
	require.NoError(t, err)
	asset := h.SeedAsset(t, nil)
	record := schedule(t, svc, h, asset.ID, enums.MaintenanceTypeRoutine, time.Hour)
	queued := h.LifecycleEvents(t, asset.ID)

	_, err = broken.Start(context.Background(), lifecycletest.Actor(), record.ID, nil)
	require.ErrorIs(t, err, lifecycletest.ErrJournal)

	assert.Equal(t, enums.AssetStatusAvailable, h.Asset(t, asset.ID).Status)
	stored, err := svc.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusScheduled, stored.Status)
	assert.Nil(t, stored.PerformedBy)
	assert.Equal(t, queued, h.LifecycleEvents(t, asset.ID))
	assert.Equal(t, int64(0), h.AuditCount(t, enums.AuditActionMaintenanceStarted))
}

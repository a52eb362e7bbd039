package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/internal/lifecycle"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

const DefaultUpcomingDays = 30

// Service schedules and tracks service engagements on assets.
type Service interface {
	Schedule(ctx context.Context, actor audit.Actor, input ScheduleInput) (*models.AssetMaintenance, error)
	Update(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, input UpdateInput) (*models.AssetMaintenance, error)
	Start(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, performerID *uuid.UUID) (*models.AssetMaintenance, error)
	Complete(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, input CompleteInput) (*models.AssetMaintenance, error)
	Cancel(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, reason string) (*models.AssetMaintenance, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AssetMaintenance, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Overdue(ctx context.Context) ([]models.AssetMaintenance, error)
	Upcoming(ctx context.Context, windowDays int) ([]models.AssetMaintenance, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type ServiceParams struct {
	DB           lifecycle.TxRunner
	Repository   *Repository
	States       *assets.StateStore
	Journal      *lifecycle.Journal
	Clock        lifecycle.Clock
	UpcomingDays int
}

type service struct {
	tx           lifecycle.TxRunner
	repo         *Repository
	states       *assets.StateStore
	journal      *lifecycle.Journal
	clock        lifecycle.Clock
	upcomingDays int
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("maintenance repository required")
	}
	if params.States == nil {
		return nil, fmt.Errorf("asset state store required")
	}
	if params.Journal == nil {
		return nil, fmt.Errorf("lifecycle journal required")
	}
	days := params.UpcomingDays
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	return &service{
		tx:           params.DB,
		repo:         params.Repository,
		states:       params.States,
		journal:      params.Journal,
		clock:        params.Clock,
		upcomingDays: days,
	}, nil
}

func (s *service) Schedule(ctx context.Context, actor audit.Actor, input ScheduleInput) (*models.AssetMaintenance, error) {
	priority := input.Priority
	if priority == "" {
		priority = enums.MaintenancePriorityMedium
	}
	if err := validateSchedule(input, priority); err != nil {
		return nil, s.journal.Rejected("maintenance_schedule", err)
	}

	var (
		record *models.AssetMaintenance
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, input.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}

		description := input.Description
		record = &models.AssetMaintenance{
			AssetID:         asset.ID,
			MaintenanceType: input.Type,
			Title:           strings.TrimSpace(input.Title),
			Description:     &description,
			ScheduledDate:   input.ScheduledDate.UTC(),
			Cost:            input.Cost,
			PerformedBy:     input.PerformedBy,
			VendorID:        input.VendorID,
			Status:          enums.MaintenanceStatusScheduled,
			Priority:        priority,
			Notes:           input.Notes,
		}
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create maintenance")
		}

		// next_maintenance_date only moves earlier.
		if asset.NextMaintenanceDate == nil || record.ScheduledDate.Before(*asset.NextMaintenanceDate) {
			next := record.ScheduledDate
			if err := states.Apply(ctx, asset, assets.Change{NextMaintenanceDate: &next}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
			}
		}

		event = lifecycle.Event{
			Actor:        actor,
			Action:       enums.AuditActionMaintenanceScheduled,
			SubjectType:  enums.AuditSubjectMaintenance,
			SubjectID:    record.ID,
			AssetID:      asset.ID,
			StatusBefore: asset.Status,
			StatusAfter:  asset.Status,
			Description:  fmt.Sprintf("Scheduled %s maintenance for asset %s (%s)", input.Type, asset.Name, asset.AssetTag),
			New:          record,
		}
		return s.journal.Write(ctx, tx, event)
	})
	if err != nil {
		return nil, s.journal.Rejected("maintenance_schedule", err)
	}
	s.journal.Committed(ctx, event)
	return record, nil
}

func validateSchedule(input ScheduleInput, priority enums.MaintenancePriority) error {
	switch {
	case input.AssetID == uuid.Nil:
		return pkgerrors.FieldError("asset_id", "asset is required")
	case !input.Type.IsValid():
		return pkgerrors.FieldError("maintenance_type", "invalid maintenance type")
	case strings.TrimSpace(input.Title) == "":
		return pkgerrors.FieldError("title", "title is required")
	case strings.TrimSpace(input.Description) == "":
		return pkgerrors.FieldError("description", "description is required")
	case input.ScheduledDate.IsZero():
		return pkgerrors.FieldError("scheduled_date", "scheduled date is required")
	case !priority.IsValid():
		return pkgerrors.FieldError("priority", "invalid priority")
	case input.Cost != nil && input.Cost.IsNegative():
		return pkgerrors.FieldError("cost", "cost must not be negative")
	}
	return nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, input UpdateInput) (*models.AssetMaintenance, error) {
	switch {
	case input.Title != nil && strings.TrimSpace(*input.Title) == "":
		return nil, s.journal.Rejected("maintenance_update", pkgerrors.FieldError("title", "title must not be empty"))
	case input.Description != nil && strings.TrimSpace(*input.Description) == "":
		return nil, s.journal.Rejected("maintenance_update", pkgerrors.FieldError("description", "description must not be empty"))
	case input.Priority != nil && !input.Priority.IsValid():
		return nil, s.journal.Rejected("maintenance_update", pkgerrors.FieldError("priority", "invalid priority"))
	case input.Cost != nil && input.Cost.IsNegative():
		return nil, s.journal.Rejected("maintenance_update", pkgerrors.FieldError("cost", "cost must not be negative"))
	case input.DowntimeHours != nil && *input.DowntimeHours < 0:
		return nil, s.journal.Rejected("maintenance_update", pkgerrors.FieldError("downtime_hours", "downtime must not be negative"))
	}

	return s.mutate(ctx, actor, "maintenance_update", maintenanceID, openStatuses, func(_ *assets.StateStore, record *models.AssetMaintenance, asset *models.Asset) (enums.AuditAction, string, error) {
		if input.Title != nil {
			record.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			v := *input.Description
			record.Description = &v
		}
		if input.ScheduledDate != nil {
			record.ScheduledDate = input.ScheduledDate.UTC()
		}
		if input.Priority != nil {
			record.Priority = *input.Priority
		}
		if input.Cost != nil {
			v := *input.Cost
			record.Cost = &v
		}
		if input.PerformedBy != nil {
			v := *input.PerformedBy
			record.PerformedBy = &v
		}
		if input.VendorID != nil {
			v := *input.VendorID
			record.VendorID = &v
		}
		if input.PartsReplaced != nil {
			v := *input.PartsReplaced
			record.PartsReplaced = &v
		}
		if input.DowntimeHours != nil {
			v := *input.DowntimeHours
			record.DowntimeHours = &v
		}
		if input.Notes != nil {
			record.Notes = appendNote(record.Notes, *input.Notes)
		}
		return enums.AuditActionMaintenanceUpdated, fmt.Sprintf("Updated maintenance record for asset %s", asset.Name), nil
	})
}

func (s *service) Start(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, performerID *uuid.UUID) (*models.AssetMaintenance, error) {
	allowed := []enums.MaintenanceStatus{enums.MaintenanceStatusScheduled}
	return s.mutate(ctx, actor, "maintenance_start", maintenanceID, allowed, func(states *assets.StateStore, record *models.AssetMaintenance, asset *models.Asset) (enums.AuditAction, string, error) {
		record.Status = enums.MaintenanceStatusInProgress
		switch {
		case performerID != nil:
			v := *performerID
			record.PerformedBy = &v
		case !actor.IsSystem():
			v := *actor.UserID
			record.PerformedBy = &v
		}
		if err := states.SetStatus(ctx, asset, enums.AssetStatusMaintenance, assets.Change{}); err != nil {
			return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
		}
		return enums.AuditActionMaintenanceStarted, fmt.Sprintf("Started maintenance for asset %s (%s)", asset.Name, asset.AssetTag), nil
	})
}

func (s *service) Complete(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, input CompleteInput) (*models.AssetMaintenance, error) {
	switch {
	case !input.AssetCondition.IsValid():
		return nil, s.journal.Rejected("maintenance_complete", pkgerrors.FieldError("asset_condition", "invalid condition"))
	case input.Cost != nil && input.Cost.IsNegative():
		return nil, s.journal.Rejected("maintenance_complete", pkgerrors.FieldError("cost", "cost must not be negative"))
	case input.DowntimeHours != nil && *input.DowntimeHours < 0:
		return nil, s.journal.Rejected("maintenance_complete", pkgerrors.FieldError("downtime_hours", "downtime must not be negative"))
	}

	return s.mutate(ctx, actor, "maintenance_complete", maintenanceID, openStatuses, func(states *assets.StateStore, record *models.AssetMaintenance, asset *models.Asset) (enums.AuditAction, string, error) {
		now := s.clock.UTC()
		completed := now
		if input.CompletedDate != nil {
			completed = input.CompletedDate.UTC()
		}
		record.Status = enums.MaintenanceStatusCompleted
		record.CompletedDate = &completed
		if input.Cost != nil {
			v := *input.Cost
			record.Cost = &v
		}
		if input.PartsReplaced != nil {
			v := *input.PartsReplaced
			record.PartsReplaced = &v
		}
		if input.DowntimeHours != nil {
			v := *input.DowntimeHours
			record.DowntimeHours = &v
		}
		if input.Notes != nil {
			record.Notes = appendNote(record.Notes, *input.Notes)
		}

		condition := input.AssetCondition
		change := assets.Change{Condition: &condition}
		if months := lifecycle.NextMaintenanceMonths(record.MaintenanceType); months > 0 {
			next := startOfDay(now).AddDate(0, months, 0)
			change.NextMaintenanceDate = &next
		} else {
			change.ClearNextMaintenance = true
		}
		if err := states.SetStatus(ctx, asset, enums.AssetStatusAvailable, change); err != nil {
			return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
		}
		return enums.AuditActionMaintenanceCompleted, fmt.Sprintf("Completed maintenance for asset %s (%s)", asset.Name, asset.AssetTag), nil
	})
}

func (s *service) Cancel(ctx context.Context, actor audit.Actor, maintenanceID uuid.UUID, reason string) (*models.AssetMaintenance, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, s.journal.Rejected("maintenance_cancel", pkgerrors.FieldError("cancellation_reason", "cancellation reason is required"))
	}
	return s.mutate(ctx, actor, "maintenance_cancel", maintenanceID, openStatuses, func(states *assets.StateStore, record *models.AssetMaintenance, asset *models.Asset) (enums.AuditAction, string, error) {
		record.Status = enums.MaintenanceStatusCancelled
		record.Notes = appendNote(record.Notes, "Cancellation reason: "+reason)
		// Leave any status set by another workflow in place.
		if asset.Status == enums.AssetStatusMaintenance {
			if err := states.SetStatus(ctx, asset, enums.AssetStatusAvailable, assets.Change{}); err != nil {
				return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
			}
		}
		return enums.AuditActionMaintenanceCancelled, fmt.Sprintf("Cancelled maintenance for asset %s (%s)", asset.Name, asset.AssetTag), nil
	})
}

type mutation func(states *assets.StateStore, record *models.AssetMaintenance, asset *models.Asset) (enums.AuditAction, string, error)

// mutate applies fn to a record in one of the allowed statuses under the asset lock.
func (s *service) mutate(ctx context.Context, actor audit.Actor, operation string, maintenanceID uuid.UUID, allowed []enums.MaintenanceStatus, fn mutation) (*models.AssetMaintenance, error) {
	var (
		record *models.AssetMaintenance
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		peek, err := repo.FindByID(ctx, maintenanceID)
		if err != nil {
			return notFound(err, "maintenance record not found", "load maintenance")
		}

		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, peek.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}

		found, err := repo.FindForUpdate(ctx, maintenanceID)
		if err != nil {
			return notFound(err, "maintenance record not found", "load maintenance")
		}
		if !statusIn(found.Status, allowed) {
			required := make([]any, 0, len(allowed))
			for _, st := range allowed {
				required = append(required, st)
			}
			return pkgerrors.StateConflict("maintenance cannot change from its current status", found.Status, required...)
		}

		old := *found
		before := asset.Status
		action, description, err := fn(states, found, asset)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update maintenance")
		}

		record = found
		event = lifecycle.Event{
			Actor:        actor,
			Action:       action,
			SubjectType:  enums.AuditSubjectMaintenance,
			SubjectID:    found.ID,
			AssetID:      asset.ID,
			StatusBefore: before,
			StatusAfter:  asset.Status,
			Description:  description,
			Old:          old,
			New:          found,
		}
		return s.journal.Write(ctx, tx, event)
	})
	if err != nil {
		return nil, s.journal.Rejected(operation, err)
	}
	s.journal.Committed(ctx, event)
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AssetMaintenance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "maintenance record not found", "load maintenance")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	switch {
	case params.Status != "" && !params.Status.IsValid():
		return nil, pkgerrors.FieldError("status", "invalid status")
	case params.Type != "" && !params.Type.IsValid():
		return nil, pkgerrors.FieldError("maintenance_type", "invalid maintenance type")
	case params.Priority != "" && !params.Priority.IsValid():
		return nil, pkgerrors.FieldError("priority", "invalid priority")
	}
	window, err := params.Window()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query := listQuery{
		assetID:  params.AssetID,
		status:   params.Status,
		kind:     params.Type,
		priority: params.Priority,
		window:   window,
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list maintenance")
	}
	items, next := pkgpagination.Cut(window, rows, maintenancePosition)
	return &ListResult{Items: items, Cursor: next}, nil
}

func (s *service) Overdue(ctx context.Context) ([]models.AssetMaintenance, error) {
	rows, err := s.repo.Overdue(ctx, s.clock.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list overdue maintenance")
	}
	return rows, nil
}

func (s *service) Upcoming(ctx context.Context, windowDays int) ([]models.AssetMaintenance, error) {
	if windowDays < 0 {
		return nil, pkgerrors.FieldError("days", "window must not be negative")
	}
	if windowDays == 0 {
		windowDays = s.upcomingDays
	}
	now := s.clock.UTC()
	rows, err := s.repo.Upcoming(ctx, now, now.AddDate(0, 0, windowDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list upcoming maintenance")
	}
	return rows, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	byStatus, err := s.repo.CountBy(ctx, "status", false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count maintenance by status")
	}
	stats := &Statistics{TotalCost: decimal.Zero}
	for _, row := range byStatus {
		stats.Total += row.Count
		switch enums.MaintenanceStatus(row.Label) {
		case enums.MaintenanceStatusScheduled:
			stats.Scheduled = row.Count
		case enums.MaintenanceStatusInProgress:
			stats.InProgress = row.Count
		case enums.MaintenanceStatusCompleted:
			stats.Completed = row.Count
		case enums.MaintenanceStatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	if stats.Overdue, err = s.repo.CountOverdue(ctx, s.clock.UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count overdue maintenance")
	}

	costs, err := s.repo.CompletedCosts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum maintenance cost")
	}
	for _, c := range costs {
		stats.TotalCost = stats.TotalCost.Add(c)
	}

	byType, err := s.repo.CountBy(ctx, "maintenance_type", false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count maintenance by type")
	}
	stats.ByType = toCountBy(byType)

	byPriority, err := s.repo.CountBy(ctx, "priority", true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count maintenance by priority")
	}
	stats.ByPriority = toCountBy(byPriority)
	return stats, nil
}

func toCountBy(rows []labelCount) []CountBy {
	out := make([]CountBy, 0, len(rows))
	for _, row := range rows {
		out = append(out, CountBy{Label: row.Label, Count: row.Count})
	}
	return out
}

func statusIn(status enums.MaintenanceStatus, allowed []enums.MaintenanceStatus) bool {
	for _, candidate := range allowed {
		if candidate == status {
			return true
		}
	}
	return false
}

// appendNote grows notes by one paragraph; existing text is never rewritten.
func appendNote(notes *string, paragraph string) *string {
	out := paragraph
	if notes != nil && *notes != "" {
		out = *notes + "\n\n" + paragraph
	}
	return &out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func notFound(err error, missing, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, missing)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

package assignments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/internal/lifecycle"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

const topHoldersLimit = 10

// Service hands assets to holders for long-term custody and takes them back.
type Service interface {
	Assign(ctx context.Context, actor audit.Actor, input AssignInput) (*models.AssetAssignment, error)
	Return(ctx context.Context, actor audit.Actor, assignmentID uuid.UUID, input ReturnInput) (*models.AssetAssignment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AssetAssignment, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.AssetAssignment, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type ServiceParams struct {
	DB         lifecycle.TxRunner
	Repository *Repository
	States     *assets.StateStore
	Guard      *lifecycle.Guard
	Journal    *lifecycle.Journal
	Clock      lifecycle.Clock
}

type service struct {
	tx      lifecycle.TxRunner
	repo    *Repository
	states  *assets.StateStore
	guard   *lifecycle.Guard
	journal *lifecycle.Journal
	clock   lifecycle.Clock
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if params.States == nil {
		return nil, fmt.Errorf("asset state store required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("lifecycle guard required")
	}
	if params.Journal == nil {
		return nil, fmt.Errorf("lifecycle journal required")
	}
	return &service{
		tx:      params.DB,
		repo:    params.Repository,
		states:  params.States,
		guard:   params.Guard,
		journal: params.Journal,
		clock:   params.Clock,
	}, nil
}

func (s *service) Assign(ctx context.Context, actor audit.Actor, input AssignInput) (*models.AssetAssignment, error) {
	if input.AssetID == uuid.Nil {
		return nil, s.journal.Rejected("assign", pkgerrors.FieldError("asset_id", "asset is required"))
	}
	if input.AssignedTo == uuid.Nil {
		return nil, s.journal.Rejected("assign", pkgerrors.FieldError("assigned_to", "holder is required"))
	}

	now := s.clock.UTC()
	assignedAt := now
	if input.AssignedAt != nil {
		assignedAt = input.AssignedAt.UTC()
	}

	var (
		record *models.AssetAssignment
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, input.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}

		custody, err := s.guard.ActiveCustody(ctx, tx, asset.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset custody")
		}
		if err := custody.RejectCheckout(); err != nil {
			return err
		}
		if err := lifecycle.RequireAvailable(enums.AuditActionAssigned, asset.Status); err != nil {
			return err
		}
		// in_use is only taken over from another assignment.
		if asset.Status == enums.AssetStatusInUse && custody.Assignment == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "asset is not available").
				WithDetails(map[string]any{"current_status": asset.Status})
		}

		repo := s.repo.WithTx(tx)
		if _, err := repo.CloseActive(ctx, asset.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close previous assignment")
		}

		record = &models.AssetAssignment{
			AssetID:         asset.ID,
			AssignedTo:      input.AssignedTo,
			AssignedBy:      actor.UserID,
			LocationID:      input.LocationID,
			DepartmentID:    input.DepartmentID,
			AssignedAt:      assignedAt,
			AssignmentNotes: input.Notes,
			Status:          enums.AssignmentStatusActive,
		}
		if err := repo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create assignment")
		}

		before := asset.Status
		holder := input.AssignedTo
		if err := states.SetStatus(ctx, asset, enums.AssetStatusInUse, assets.Change{
			AssignedTo:   &holder,
			AssignedAt:   &assignedAt,
			LocationID:   input.LocationID,
			DepartmentID: input.DepartmentID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
		}

		event = lifecycle.Event{
			Actor:        actor,
			Action:       enums.AuditActionAssigned,
			SubjectType:  enums.AuditSubjectAssignment,
			SubjectID:    record.ID,
			AssetID:      asset.ID,
			StatusBefore: before,
			StatusAfter:  asset.Status,
			Description:  fmt.Sprintf("Assigned asset %s (%s) to user", asset.Name, asset.AssetTag),
			New:          record,
		}
		return s.journal.Write(ctx, tx, event)
	})
	if err != nil {
		return nil, s.journal.Rejected("assign", err)
	}
	s.journal.Committed(ctx, event)
	return record, nil
}

func (s *service) Return(ctx context.Context, actor audit.Actor, assignmentID uuid.UUID, input ReturnInput) (*models.AssetAssignment, error) {
	if !input.Condition.IsValid() {
		return nil, s.journal.Rejected("return", pkgerrors.FieldError("return_condition", "invalid condition"))
	}

	var (
		record *models.AssetAssignment
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		peek, err := repo.FindByID(ctx, assignmentID)
		if err != nil {
			return notFound(err, "assignment not found", "load assignment")
		}

		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, peek.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}

		found, err := repo.FindForUpdate(ctx, assignmentID)
		if err != nil {
			return notFound(err, "assignment not found", "load assignment")
		}
		if found.Status != enums.AssignmentStatusActive {
			return pkgerrors.StateConflict("assignment is not active", found.Status, enums.AssignmentStatusActive)
		}

		old := *found
		now := s.clock.UTC()
		condition := input.Condition
		found.ReturnedAt = &now
		found.ReturnNotes = input.Notes
		found.ReturnCondition = &condition
		found.Status = enums.AssignmentStatusReturned
		if err := repo.Save(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update assignment")
		}

		before := asset.Status
		if err := states.SetStatus(ctx, asset, enums.AssetStatusAvailable, assets.Change{
			ClearHolder: true,
			Condition:   &condition,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
		}

		record = found
		event = lifecycle.Event{
			Actor:        actor,
			Action:       enums.AuditActionReturned,
			SubjectType:  enums.AuditSubjectAssignment,
			SubjectID:    found.ID,
			AssetID:      asset.ID,
			StatusBefore: before,
			StatusAfter:  asset.Status,
			Description:  fmt.Sprintf("Returned asset %s (%s)", asset.Name, asset.AssetTag),
			Old:          old,
			New:          found,
		}
		return s.journal.Write(ctx, tx, event)
	})
	if err != nil {
		return nil, s.journal.Rejected("return", err)
	}
	s.journal.Committed(ctx, event)
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AssetAssignment, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "assignment not found", "load assignment")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.FieldError("status", "invalid status")
	}
	window, err := params.Window()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query := listQuery{
		assetID: params.AssetID,
		userID:  params.UserID,
		status:  params.Status,
		window:  window,
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assignments")
	}
	items, next := pkgpagination.Cut(window, rows, assignmentPosition)
	return &ListResult{Items: items, Cursor: next}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.AssetAssignment, error) {
	rows, err := s.repo.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user assignments")
	}
	return rows, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	var err error
	if stats.Total, err = s.repo.CountByStatus(ctx, ""); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count assignments")
	}
	if stats.Active, err = s.repo.CountByStatus(ctx, enums.AssignmentStatusActive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active assignments")
	}
	if stats.Returned, err = s.repo.CountByStatus(ctx, enums.AssignmentStatusReturned); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count returned assignments")
	}

	departments, err := s.repo.ActiveByDepartment(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "group assignments by department")
	}
	stats.ByDepartment = make([]DepartmentCount, 0, len(departments))
	for _, row := range departments {
		stats.ByDepartment = append(stats.ByDepartment, DepartmentCount{DepartmentID: row.DepartmentID, Count: row.Count})
	}

	holders, err := s.repo.TopActiveHolders(ctx, topHoldersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank assignment holders")
	}
	stats.TopHolders = make([]HolderCount, 0, len(holders))
	for _, row := range holders {
		stats.TopHolders = append(stats.TopHolders, HolderCount{UserID: row.AssignedTo, Count: row.Count})
	}
	return stats, nil
}

func notFound(err error, missing, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, missing)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

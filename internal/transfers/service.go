package transfers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

const recentTransfersLimit = 5

// Service moves assets between holders, locations and departments, with an
// optional approval step.
type Service interface {
	Initiate(ctx context.Context, actor audit.Actor, input InitiateInput) (*models.AssetTransfer, error)
	Approve(ctx context.Context, actor audit.Actor, transferID uuid.UUID) (*models.AssetTransfer, error)
	Reject(ctx context.Context, actor audit.Actor, transferID uuid.UUID, reason string) (*models.AssetTransfer, error)
	Cancel(ctx context.Context, actor audit.Actor, transferID uuid.UUID) (*models.AssetTransfer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AssetTransfer, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Pending(ctx context.Context) ([]models.AssetTransfer, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type ServiceParams struct {
	DB         lifecycle.TxRunner
	Repository *Repository
	States     *assets.StateStore
	Guard      *lifecycle.Guard
	Journal    *lifecycle.Journal
	Clock      lifecycle.Clock
	// RequireApproval is the default when a request does not say.
	RequireApproval bool
}

type service struct {
	tx              lifecycle.TxRunner
	repo            *Repository
	states          *assets.StateStore
	guard           *lifecycle.Guard
	journal         *lifecycle.Journal
	clock           lifecycle.Clock
	requireApproval bool
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("transfer repository required")
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
		tx:              params.DB,
		repo:            params.Repository,
		states:          params.States,
		guard:           params.Guard,
		journal:         params.Journal,
		clock:           params.Clock,
		requireApproval: params.RequireApproval,
	}, nil
}

func (s *service) Initiate(ctx context.Context, actor audit.Actor, input InitiateInput) (*models.AssetTransfer, error) {
	if input.AssetID == uuid.Nil {
		return nil, s.journal.Rejected("transfer_initiate", pkgerrors.FieldError("asset_id", "asset is required"))
	}
	if input.To.empty() {
		return nil, s.journal.Rejected("transfer_initiate", pkgerrors.FieldError("destination", "at least one destination (user, location, or department) must be specified"))
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, s.journal.Rejected("transfer_initiate", pkgerrors.FieldError("reason", "reason is required"))
	}
	requiresApproval := s.requireApproval
	if input.RequiresApproval != nil {
		requiresApproval = *input.RequiresApproval
	}

	var (
		record *models.AssetTransfer
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, input.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}
		if input.To.UserID != nil {
			if err := s.rejectCheckedOut(ctx, tx, asset.ID); err != nil {
				return err
			}
		}

		now := s.clock.UTC()
		transferDate := now
		if input.TransferDate != nil {
			transferDate = input.TransferDate.UTC()
		}
		from := assets.CustodyOf(asset)
		record = &models.AssetTransfer{
			AssetID:          asset.ID,
			FromUserID:       from.HolderID,
			FromLocationID:   from.LocationID,
			FromDepartmentID: from.DepartmentID,
			ToUserID:         input.To.UserID,
			ToLocationID:     input.To.LocationID,
			ToDepartmentID:   input.To.DepartmentID,
			TransferredBy:    actor.UserID,
			TransferDate:     transferDate,
			Reason:           &input.Reason,
			Notes:            input.Notes,
			Status:           enums.TransferStatusPending,
		}
		if !requiresApproval {
			record.ApprovedBy = actor.UserID
			record.ApprovedAt = &now
		}
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create transfer")
		}

		before := asset.Status
		if !requiresApproval {
			if err := s.apply(ctx, tx, states, repo, asset, record, now); err != nil {
				return err
			}
		}

		event = lifecycle.Event{
			Actor:        actor,
			Action:       enums.AuditActionTransferInitiated,
			SubjectType:  enums.AuditSubjectTransfer,
			SubjectID:    record.ID,
			AssetID:      asset.ID,
			StatusBefore: before,
			StatusAfter:  asset.Status,
			Description:  fmt.Sprintf("Initiated transfer for asset %s (%s)", asset.Name, asset.AssetTag),
			New:          record,
		}
		return s.journal.Write(ctx, tx, event)
	})
	if err != nil {
		return nil, s.journal.Rejected("transfer_initiate", err)
	}
	s.journal.Committed(ctx, event)
	return record, nil
}

func (s *service) Approve(ctx context.Context, actor audit.Actor, transferID uuid.UUID) (*models.AssetTransfer, error) {
	return s.decide(ctx, actor, "transfer_approve", transferID, func(tx *gorm.DB, states *assets.StateStore, repo *Repository, record *models.AssetTransfer, asset *models.Asset) (enums.AuditAction, string, error) {
		if record.ToUserID != nil {
			if err := s.rejectCheckedOut(ctx, tx, asset.ID); err != nil {
				return "", "", err
			}
		}
		now := s.clock.UTC()
		record.ApprovedBy = actor.UserID
		record.ApprovedAt = &now
		record.Status = enums.TransferStatusApproved
		if err := s.apply(ctx, tx, states, repo, asset, record, now); err != nil {
			return "", "", err
		}
		return enums.AuditActionTransferApproved, fmt.Sprintf("Approved transfer for asset %s (%s)", asset.Name, asset.AssetTag), nil
	})
}

func (s *service) Reject(ctx context.Context, actor audit.Actor, transferID uuid.UUID, reason string) (*models.AssetTransfer, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, s.journal.Rejected("transfer_reject", pkgerrors.FieldError("rejection_reason", "rejection reason is required"))
	}
	return s.decide(ctx, actor, "transfer_reject", transferID, func(_ *gorm.DB, _ *assets.StateStore, repo *Repository, record *models.AssetTransfer, asset *models.Asset) (enums.AuditAction, string, error) {
		record.Status = enums.TransferStatusRejected
		record.Notes = appendNote(record.Notes, "\n\nRejection reason: "+reason)
		if err := repo.Save(ctx, record); err != nil {
			return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update transfer")
		}
		return enums.AuditActionTransferRejected, fmt.Sprintf("Rejected transfer for asset %s (%s)", asset.Name, asset.AssetTag), nil
	})
}

func (s *service) Cancel(ctx context.Context, actor audit.Actor, transferID uuid.UUID) (*models.AssetTransfer, error) {
	return s.decide(ctx, actor, "transfer_cancel", transferID, func(_ *gorm.DB, _ *assets.StateStore, repo *Repository, record *models.AssetTransfer, asset *models.Asset) (enums.AuditAction, string, error) {
		if !actor.Is(record.TransferredBy) {
			return "", "", pkgerrors.New(pkgerrors.CodeForbidden, "you can only cancel transfers you initiated")
		}
		record.Status = enums.TransferStatusCancelled
		if err := repo.Save(ctx, record); err != nil {
			return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update transfer")
		}
		return enums.AuditActionTransferCancelled, fmt.Sprintf("Cancelled transfer for asset %s (%s)", asset.Name, asset.AssetTag), nil
	})
}

type decision func(tx *gorm.DB, states *assets.StateStore, repo *Repository, record *models.AssetTransfer, asset *models.Asset) (enums.AuditAction, string, error)

// decide resolves a pending transfer under the asset lock.
func (s *service) decide(ctx context.Context, actor audit.Actor, operation string, transferID uuid.UUID, fn decision) (*models.AssetTransfer, error) {
	var (
		record *models.AssetTransfer
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		peek, err := repo.FindByID(ctx, transferID)
		if err != nil {
			return notFound(err, "transfer not found", "load transfer")
		}

		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, peek.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}

		found, err := repo.FindForUpdate(ctx, transferID)
		if err != nil {
			return notFound(err, "transfer not found", "load transfer")
		}
		if found.Status != enums.TransferStatusPending {
			return pkgerrors.StateConflict("transfer is not pending", found.Status, enums.TransferStatusPending)
		}

		old := *found
		before := asset.Status
		action, description, err := fn(tx, states, repo, found, asset)
		if err != nil {
			return err
		}

		record = found
		event = lifecycle.Event{
			Actor:        actor,
			Action:       action,
			SubjectType:  enums.AuditSubjectTransfer,
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

// apply writes the non-null destination fields onto the asset and completes
// the transfer. A new holder supersedes the active assignment. A completed
// transfer never reaches apply again.
func (s *service) apply(ctx context.Context, tx *gorm.DB, states *assets.StateStore, repo *Repository, asset *models.Asset, record *models.AssetTransfer, now time.Time) error {
	change := assets.Change{
		LocationID:   record.ToLocationID,
		DepartmentID: record.ToDepartmentID,
	}
	var err error
	if record.ToUserID != nil {
		if _, err := s.guard.SupersedeAssignment(ctx, tx, asset.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "supersede assignment")
		}
		holder := *record.ToUserID
		change.AssignedTo = &holder
		change.AssignedAt = &now
		err = states.SetStatus(ctx, asset, enums.AssetStatusInUse, change)
	} else {
		err = states.Apply(ctx, asset, change)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
	}

	record.Status = enums.TransferStatusCompleted
	if err := repo.Save(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete transfer")
	}
	return nil
}

func (s *service) rejectCheckedOut(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) error {
	custody, err := s.guard.ActiveCustody(ctx, tx, assetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset custody")
	}
	return custody.RejectCheckout()
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AssetTransfer, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "transfer not found", "load transfer")
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transfers")
	}
	items, next := pkgpagination.Cut(window, rows, transferPosition)
	return &ListResult{Items: items, Cursor: next}, nil
}

func (s *service) Pending(ctx context.Context) ([]models.AssetTransfer, error) {
	rows, err := s.repo.Pending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending transfers")
	}
	return rows, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count transfers")
	}
	stats := &Statistics{}
	for _, row := range counts {
		stats.Total += row.Count
		switch row.Status {
		case enums.TransferStatusPending:
			stats.Pending = row.Count
		case enums.TransferStatusApproved:
			stats.Approved = row.Count
		case enums.TransferStatusCompleted:
			stats.Completed = row.Count
		case enums.TransferStatusRejected:
			stats.Rejected = row.Count
		case enums.TransferStatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	if stats.Recent, err = s.repo.Recent(ctx, recentTransfersLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent transfers")
	}
	return stats, nil
}

func appendNote(notes *string, suffix string) *string {
	out := suffix
	if notes != nil {
		out = *notes + suffix
	}
	return &out
}

func notFound(err error, missing, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, missing)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

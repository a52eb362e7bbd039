package checkouts

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

const (
	topRankLimit     = 10
	noteTimestampFmt = "2006-01-02 15:04:05"
)

// Service lends assets out for short periods and takes them back.
type Service interface {
	Checkout(ctx context.Context, actor audit.Actor, input CheckoutInput) (*models.AssetCheckout, error)
	Checkin(ctx context.Context, actor audit.Actor, checkoutID uuid.UUID, input CheckinInput) (*models.AssetCheckout, error)
	Extend(ctx context.Context, actor audit.Actor, checkoutID uuid.UUID, input ExtendInput) (*models.AssetCheckout, error)
	ReportIssue(ctx context.Context, actor audit.Actor, checkoutID uuid.UUID, input IssueInput) (*models.AssetCheckout, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AssetCheckout, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ForUser(ctx context.Context, userID uuid.UUID) ([]models.AssetCheckout, error)
	Overdue(ctx context.Context) ([]models.AssetCheckout, error)
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
		return nil, fmt.Errorf("checkout repository required")
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

func (s *service) Checkout(ctx context.Context, actor audit.Actor, input CheckoutInput) (*models.AssetCheckout, error) {
	if input.AssetID == uuid.Nil {
		return nil, s.journal.Rejected("checkout", pkgerrors.FieldError("asset_id", "asset is required"))
	}
	if input.UserID == uuid.Nil {
		return nil, s.journal.Rejected("checkout", pkgerrors.FieldError("user_id", "borrower is required"))
	}
	now := s.clock.UTC()
	if input.ExpectedReturnAt != nil && !input.ExpectedReturnAt.After(now) {
		return nil, s.journal.Rejected("checkout", pkgerrors.FieldError("expected_return_at", "expected return must be in the future"))
	}

	var (
		record *models.AssetCheckout
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, input.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}
		if err := lifecycle.RequireAvailable(enums.AuditActionCheckedOut, asset.Status); err != nil {
			return err
		}
		custody, err := s.guard.ActiveCustody(ctx, tx, asset.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset custody")
		}
		if custody.Checkout != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "asset is already checked out")
		}
		if err := custody.RejectAssignment(); err != nil {
			return err
		}

		var due *time.Time
		if input.ExpectedReturnAt != nil {
			v := input.ExpectedReturnAt.UTC()
			due = &v
		}
		record = &models.AssetCheckout{
			AssetID:          asset.ID,
			UserID:           input.UserID,
			CheckedOutBy:     actor.UserID,
			CheckedOutAt:     now,
			ExpectedReturnAt: due,
			CheckoutNotes:    input.Notes,
			ConditionOut:     asset.Condition,
			Status:           enums.CheckoutStatusCheckedOut,
		}
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create checkout")
		}

		before := asset.Status
		if err := states.SetStatus(ctx, asset, enums.AssetStatusInUse, assets.Change{}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
		}

		event = lifecycle.Event{
			Actor:        actor,
			Action:       enums.AuditActionCheckedOut,
			SubjectType:  enums.AuditSubjectCheckout,
			SubjectID:    record.ID,
			AssetID:      asset.ID,
			StatusBefore: before,
			StatusAfter:  asset.Status,
			Description:  fmt.Sprintf("Checked out asset %s (%s) to user", asset.Name, asset.AssetTag),
			New:          record,
		}
		return s.journal.Write(ctx, tx, event)
	})
	if err != nil {
		return nil, s.journal.Rejected("checkout", err)
	}
	s.journal.Committed(ctx, event)
	return record, nil
}

func (s *service) Checkin(ctx context.Context, actor audit.Actor, checkoutID uuid.UUID, input CheckinInput) (*models.AssetCheckout, error) {
	if !input.Condition.IsValid() {
		return nil, s.journal.Rejected("checkin", pkgerrors.FieldError("condition_in", "invalid condition"))
	}
	return s.settle(ctx, actor, "checkin", checkoutID, func(record *models.AssetCheckout, asset *models.Asset, now time.Time) settlement {
		condition := input.Condition
		record.CheckedInAt = &now
		record.CheckedInBy = actor.UserID
		record.CheckinNotes = input.Notes
		record.ConditionIn = &condition
		record.Status = enums.CheckoutStatusCheckedIn
		return settlement{
			status:      enums.AssetStatusAvailable,
			change:      assets.Change{Condition: &condition},
			action:      enums.AuditActionCheckedIn,
			description: fmt.Sprintf("Checked in asset %s (%s)", asset.Name, asset.AssetTag),
		}
	})
}

func (s *service) Extend(ctx context.Context, actor audit.Actor, checkoutID uuid.UUID, input ExtendInput) (*models.AssetCheckout, error) {
	now := s.clock.UTC()
	if !input.ExpectedReturnAt.After(now) {
		return nil, s.journal.Rejected("extend", pkgerrors.FieldError("expected_return_at", "expected return must be in the future"))
	}
	return s.settle(ctx, actor, "extend", checkoutID, func(record *models.AssetCheckout, asset *models.Asset, now time.Time) settlement {
		due := input.ExpectedReturnAt.UTC()
		record.ExpectedReturnAt = &due
		if input.Reason != nil && strings.TrimSpace(*input.Reason) != "" {
			notes := ""
			if record.CheckoutNotes != nil {
				notes = *record.CheckoutNotes
			}
			notes += fmt.Sprintf("\n\nExtended on %s: %s", now.Format(noteTimestampFmt), *input.Reason)
			record.CheckoutNotes = &notes
		}
		return settlement{
			keepStatus:  true,
			action:      enums.AuditActionCheckoutExtended,
			description: fmt.Sprintf("Extended checkout for asset %s (%s)", asset.Name, asset.AssetTag),
		}
	})
}

func (s *service) ReportIssue(ctx context.Context, actor audit.Actor, checkoutID uuid.UUID, input IssueInput) (*models.AssetCheckout, error) {
	assetStatus, ok := lifecycle.IssueStatus(input.Type)
	if !ok {
		return nil, s.journal.Rejected("report_issue", pkgerrors.FieldError("issue_type", "issue type must be lost, stolen or damaged"))
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, s.journal.Rejected("report_issue", pkgerrors.FieldError("description", "description is required"))
	}
	if input.Condition != nil && !input.Condition.IsValid() {
		return nil, s.journal.Rejected("report_issue", pkgerrors.FieldError("condition_in", "invalid condition"))
	}
	if input.Type == enums.IssueTypeDamaged && input.Condition == nil {
		return nil, s.journal.Rejected("report_issue", pkgerrors.FieldError("condition_in", "condition is required for damaged assets"))
	}

	condition := enums.AssetConditionDamaged
	if input.Condition != nil {
		condition = *input.Condition
	}
	return s.settle(ctx, actor, "report_issue", checkoutID, func(record *models.AssetCheckout, asset *models.Asset, now time.Time) settlement {
		notes := fmt.Sprintf("ISSUE REPORTED: %s\n%s", strings.ToUpper(input.Type.String()), input.Description)
		record.CheckedInAt = &now
		record.CheckedInBy = actor.UserID
		record.CheckinNotes = &notes
		record.ConditionIn = &condition
		record.Status = enums.CheckoutStatusCheckedIn
		return settlement{
			status:      assetStatus,
			change:      assets.Change{Condition: &condition},
			action:      enums.AuditActionIssueReported,
			description: fmt.Sprintf("Reported %s issue for asset %s (%s)", input.Type, asset.Name, asset.AssetTag),
		}
	})
}

type settlement struct {
	status      enums.AssetStatus
	keepStatus  bool
	change      assets.Change
	action      enums.AuditAction
	description string
}

type mutateFunc func(record *models.AssetCheckout, asset *models.Asset, now time.Time) settlement

// settle runs an operation against a checked_out record under the asset lock.
func (s *service) settle(ctx context.Context, actor audit.Actor, operation string, checkoutID uuid.UUID, mutate mutateFunc) (*models.AssetCheckout, error) {
	var (
		record *models.AssetCheckout
		event  lifecycle.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		peek, err := repo.FindByID(ctx, checkoutID)
		if err != nil {
			return notFound(err, "checkout not found", "load checkout")
		}

		states := s.states.WithTx(tx)
		asset, err := states.LoadForUpdate(ctx, peek.AssetID)
		if err != nil {
			return notFound(err, "asset not found", "load asset")
		}

		found, err := repo.FindForUpdate(ctx, checkoutID)
		if err != nil {
			return notFound(err, "checkout not found", "load checkout")
		}
		if found.Status != enums.CheckoutStatusCheckedOut {
			return pkgerrors.StateConflict("checkout is not active", found.Status, enums.CheckoutStatusCheckedOut)
		}

		old := *found
		result := mutate(found, asset, s.clock.UTC())
		if err := repo.Save(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update checkout")
		}

		before := asset.Status
		if result.keepStatus {
			err = states.Apply(ctx, asset, result.change)
		} else {
			err = states.SetStatus(ctx, asset, result.status, result.change)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
		}

		record = found
		event = lifecycle.Event{
			Actor:        actor,
			Action:       result.action,
			SubjectType:  enums.AuditSubjectCheckout,
			SubjectID:    found.ID,
			AssetID:      asset.ID,
			StatusBefore: before,
			StatusAfter:  asset.Status,
			Description:  result.description,
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

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AssetCheckout, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "checkout not found", "load checkout")
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list checkouts")
	}
	items, next := pkgpagination.Cut(window, rows, checkoutPosition)
	return &ListResult{Items: items, Cursor: next}, nil
}

func (s *service) ForUser(ctx context.Context, userID uuid.UUID) ([]models.AssetCheckout, error) {
	rows, err := s.repo.OpenForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user checkouts")
	}
	return rows, nil
}

func (s *service) Overdue(ctx context.Context) ([]models.AssetCheckout, error) {
	rows, err := s.repo.Overdue(ctx, s.clock.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list overdue checkouts")
	}
	return rows, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	now := s.clock.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &Statistics{}
	var err error
	if stats.Total, err = s.repo.Count(ctx, ""); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count checkouts")
	}
	if stats.Active, err = s.repo.Count(ctx, enums.CheckoutStatusCheckedOut); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count open checkouts")
	}
	if stats.Completed, err = s.repo.Count(ctx, enums.CheckoutStatusCheckedIn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count closed checkouts")
	}
	if stats.Overdue, err = s.repo.CountOverdue(ctx, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count overdue checkouts")
	}
	if stats.TodayCheckouts, err = s.repo.CountBetween(ctx, "checked_out_at", dayStart, dayEnd); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count today's checkouts")
	}
	if stats.TodayCheckins, err = s.repo.CountBetween(ctx, "checked_in_at", dayStart, dayEnd); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count today's checkins")
	}

	users, err := s.repo.TopOpenUsers(ctx, topRankLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank borrowers")
	}
	stats.TopUsers = ranked(users)

	topAssets, err := s.repo.TopAssets(ctx, topRankLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rank assets")
	}
	stats.TopAssets = ranked(topAssets)
	return stats, nil
}

func ranked(rows []idCount) []RankedCount {
	out := make([]RankedCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, RankedCount{ID: row.ID, Count: row.Count})
	}
	return out
}

func notFound(err error, missing, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, missing)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

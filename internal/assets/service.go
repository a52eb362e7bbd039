package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/internal/audit"
	dbpkg "github.com/angelmondragon/assettrack-backend/pkg/db"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

const defaultAlertWindowDays = 7

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// Service registers assets and serves asset reads. Status changes belong to the workflows.
type Service interface {
	Register(ctx context.Context, actor audit.Actor, input RegisterInput) (*models.Asset, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	History(ctx context.Context, id uuid.UUID) (*History, error)
	Statistics(ctx context.Context) (*Statistics, error)
	Alerts(ctx context.Context, windowDays int) (*Alerts, error)
}

type ServiceParams struct {
	DB         txRunner
	Repository *Repository
	Audit      auditRecorder
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	tx    txRunner
	repo  *Repository
	audit auditRecorder
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:    params.DB,
		repo:  params.Repository,
		audit: params.Audit,
		logg:  params.Logger,
		now:   now,
	}, nil
}

func (s *service) Register(ctx context.Context, actor audit.Actor, input RegisterInput) (*models.Asset, error) {
	tag := strings.TrimSpace(input.AssetTag)
	if tag == "" {
		return nil, pkgerrors.FieldError("asset_tag", "asset tag is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.FieldError("name", "name is required")
	}
	condition := input.Condition
	if condition == "" {
		condition = enums.AssetConditionGood
	}
	if !condition.IsValid() {
		return nil, pkgerrors.FieldError("condition", "invalid condition")
	}
	if input.PurchaseCost != nil && input.PurchaseCost.IsNegative() {
		return nil, pkgerrors.FieldError("purchase_cost", "purchase cost must not be negative")
	}

	asset := &models.Asset{
		AssetTag:            tag,
		Name:                name,
		Description:         input.Description,
		CategoryID:          input.CategoryID,
		Brand:               input.Brand,
		Model:               input.Model,
		SerialNumber:        input.SerialNumber,
		PurchaseDate:        input.PurchaseDate,
		PurchaseCost:        input.PurchaseCost,
		LocationID:          input.LocationID,
		DepartmentID:        input.DepartmentID,
		Status:              enums.AssetStatusAvailable,
		Condition:           condition,
		IsCritical:          input.IsCritical,
		NextMaintenanceDate: input.NextMaintenanceDate,
		Notes:               input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.TagExists(ctx, tag)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check asset tag")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "asset tag already in use")
		}
		if err := repo.Create(ctx, asset); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_assets_asset_tag") {
				return pkgerrors.New(pkgerrors.CodeConflict, "asset tag already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create asset")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Actor:       actor,
			Action:      enums.AuditActionCreated,
			SubjectType: enums.AuditSubjectAsset,
			SubjectID:   asset.ID,
			Description: fmt.Sprintf("Asset %s registered", asset.AssetTag),
			New:         asset,
		})
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithAsset(ctx, asset.ID), "asset registered")
	}
	return asset, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup asset")
	}
	return asset, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.FieldError("status", "invalid status")
	}
	if params.Condition != "" && !params.Condition.IsValid() {
		return nil, pkgerrors.FieldError("condition", "invalid condition")
	}

	window, err := params.Window()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query := listQuery{
		status:       params.Status,
		condition:    params.Condition,
		categoryID:   params.CategoryID,
		locationID:   params.LocationID,
		departmentID: params.DepartmentID,
		assignedTo:   params.AssignedTo,
		search:       params.Search,
		window:       window,
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assets")
	}
	items, next := pkgpagination.Cut(window, rows, assetPosition)
	return &ListResult{Items: items, Cursor: next}, nil
}

func (s *service) History(ctx context.Context, id uuid.UUID) (*History, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset history")
	}
	return history, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	total, critical, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count assets")
	}
	stats := &Statistics{Total: total, Critical: critical, PurchaseValue: decimal.Zero}
	for column, dest := range map[string]*[]GroupCount{
		"status":      &stats.ByStatus,
		"condition":   &stats.ByCondition,
		"category_id": &stats.ByCategory,
		"location_id": &stats.ByLocation,
	} {
		rows, err := s.repo.CountBy(ctx, column)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "group assets by "+column)
		}
		out := make([]GroupCount, 0, len(rows))
		for _, row := range rows {
			out = append(out, GroupCount{Label: row.Label, Count: row.Count})
		}
		*dest = out
	}
	costs, err := s.repo.PurchaseCosts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum purchase costs")
	}
	for _, c := range costs {
		stats.PurchaseValue = stats.PurchaseValue.Add(c)
	}
	return stats, nil
}

func (s *service) Alerts(ctx context.Context, windowDays int) (*Alerts, error) {
	if windowDays < 0 {
		return nil, pkgerrors.FieldError("days", "window must not be negative")
	}
	if windowDays == 0 {
		windowDays = defaultAlertWindowDays
	}
	now := s.now().UTC()
	due, err := s.repo.MaintenanceDueBetween(ctx, now, now.AddDate(0, 0, windowDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load due maintenance")
	}
	overdue, err := s.repo.MaintenanceOverdue(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load overdue maintenance")
	}
	checkouts, err := s.repo.CheckoutsOverdue(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load overdue checkouts")
	}
	return &Alerts{
		WindowDays:         windowDays,
		MaintenanceDue:     due,
		MaintenanceOverdue: overdue,
		CheckoutsOverdue:   checkouts,
	}, nil
}

package maintenance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

var closedStatuses = []enums.MaintenanceStatus{enums.MaintenanceStatusCompleted, enums.MaintenanceStatusCancelled}

var openStatuses = []enums.MaintenanceStatus{enums.MaintenanceStatusScheduled, enums.MaintenanceStatusInProgress}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, record *models.AssetMaintenance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) Save(ctx context.Context, record *models.AssetMaintenance) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetMaintenance, error) {
	var record models.AssetMaintenance
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindForUpdate re-reads the record holding a row lock. Call it after the
// asset lock so every workflow locks in the same order.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetMaintenance, error) {
	var record models.AssetMaintenance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Overdue returns unfinished work scheduled before now, oldest first.
func (r *Repository) Overdue(ctx context.Context, now time.Time) ([]models.AssetMaintenance, error) {
	var rows []models.AssetMaintenance
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("status NOT IN ? AND scheduled_date < ?", closedStatuses, now).
		Order("scheduled_date ASC").
		Find(&rows).Error
	return rows, err
}

// Upcoming returns scheduled work with scheduled_date in [from, to].
func (r *Repository) Upcoming(ctx context.Context, from, to time.Time) ([]models.AssetMaintenance, error) {
	var rows []models.AssetMaintenance
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("status = ? AND scheduled_date >= ? AND scheduled_date <= ?", enums.MaintenanceStatusScheduled, from, to).
		Order("scheduled_date ASC").
		Find(&rows).Error
	return rows, err
}

type listQuery struct {
	assetID  *uuid.UUID
	status   enums.MaintenanceStatus
	kind     enums.MaintenanceType
	priority enums.MaintenancePriority
	window   pkgpagination.Window
}

func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.AssetMaintenance, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetMaintenance{})
	if opts.assetID != nil {
		query = query.Where("asset_id = ?", *opts.assetID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.kind != "" {
		query = query.Where("maintenance_type = ?", opts.kind)
	}
	if opts.priority != "" {
		query = query.Where("priority = ?", opts.priority)
	}

	var rows []models.AssetMaintenance
	err := query.Scopes(opts.window.Scope).Find(&rows).Error
	return rows, err
}

type labelCount struct {
	Label string
	Count int64
}

func (r *Repository) CountBy(ctx context.Context, column string, onlyOpen bool) ([]labelCount, error) {
	switch column {
	case "status", "maintenance_type", "priority":
	default:
		return nil, gorm.ErrInvalidField
	}
	query := r.db.WithContext(ctx).Model(&models.AssetMaintenance{}).
		Select(column + " AS label, COUNT(*) AS count")
	if onlyOpen {
		query = query.Where("status IN ?", openStatuses)
	}
	var rows []labelCount
	err := query.Group(column).Order("count DESC").Scan(&rows).Error
	return rows, err
}

func (r *Repository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssetMaintenance{}).
		Where("status NOT IN ? AND scheduled_date < ?", closedStatuses, now).
		Count(&count).Error
	return count, err
}

// CompletedCosts returns recorded costs of completed work; summed in Go to keep decimal precision.
func (r *Repository) CompletedCosts(ctx context.Context) ([]decimal.Decimal, error) {
	var costs []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.AssetMaintenance{}).
		Where("status = ? AND cost IS NOT NULL", enums.MaintenanceStatusCompleted).
		Pluck("cost", &costs).Error
	return costs, err
}

func maintenancePosition(row models.AssetMaintenance) pkgpagination.Cursor {
	return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
}

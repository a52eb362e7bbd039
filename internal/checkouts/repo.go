package checkouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

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

func (r *Repository) Create(ctx context.Context, record *models.AssetCheckout) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) Save(ctx context.Context, record *models.AssetCheckout) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetCheckout, error) {
	var record models.AssetCheckout
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindForUpdate re-reads the record holding a row lock. Call it after the
// asset lock so every workflow locks in the same order.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetCheckout, error) {
	var record models.AssetCheckout
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Overdue returns open checkouts whose due date passed, soonest due first.
func (r *Repository) Overdue(ctx context.Context, now time.Time) ([]models.AssetCheckout, error) {
	var rows []models.AssetCheckout
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("status = ? AND expected_return_at IS NOT NULL AND expected_return_at < ?", enums.CheckoutStatusCheckedOut, now).
		Order("expected_return_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) OpenForUser(ctx context.Context, userID uuid.UUID) ([]models.AssetCheckout, error) {
	var rows []models.AssetCheckout
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("user_id = ? AND status = ?", userID, enums.CheckoutStatusCheckedOut).
		Order("checked_out_at DESC").
		Find(&rows).Error
	return rows, err
}

type listQuery struct {
	assetID *uuid.UUID
	userID  *uuid.UUID
	status  enums.CheckoutStatus
	window  pkgpagination.Window
}

func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.AssetCheckout, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetCheckout{})
	if opts.assetID != nil {
		query = query.Where("asset_id = ?", *opts.assetID)
	}
	if opts.userID != nil {
		query = query.Where("user_id = ?", *opts.userID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}

	var rows []models.AssetCheckout
	err := query.Scopes(opts.window.Scope).Find(&rows).Error
	return rows, err
}

func (r *Repository) Count(ctx context.Context, status enums.CheckoutStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AssetCheckout{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *Repository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssetCheckout{}).
		Where("status = ? AND expected_return_at IS NOT NULL AND expected_return_at < ?", enums.CheckoutStatusCheckedOut, now).
		Count(&count).Error
	return count, err
}

// CountBetween counts rows whose column falls in [from, to).
func (r *Repository) CountBetween(ctx context.Context, column string, from, to time.Time) (int64, error) {
	switch column {
	case "checked_out_at", "checked_in_at":
	default:
		return 0, gorm.ErrInvalidField
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssetCheckout{}).
		Where(column+" >= ? AND "+column+" < ?", from, to).
		Count(&count).Error
	return count, err
}

type idCount struct {
	ID    uuid.UUID
	Count int64
}

func (r *Repository) TopOpenUsers(ctx context.Context, limit int) ([]idCount, error) {
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&models.AssetCheckout{}).
		Select("user_id AS id, COUNT(*) AS count").
		Where("status = ?", enums.CheckoutStatusCheckedOut).
		Group("user_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) TopAssets(ctx context.Context, limit int) ([]idCount, error) {
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&models.AssetCheckout{}).
		Select("asset_id AS id, COUNT(*) AS count").
		Group("asset_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func checkoutPosition(row models.AssetCheckout) pkgpagination.Cursor {
	return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
}

package transfers

import (
	"context"

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

func (r *Repository) Create(ctx context.Context, record *models.AssetTransfer) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) Save(ctx context.Context, record *models.AssetTransfer) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetTransfer, error) {
	var record models.AssetTransfer
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindForUpdate re-reads the record holding a row lock. Call it after the
// asset lock so every workflow locks in the same order.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetTransfer, error) {
	var record models.AssetTransfer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

type listQuery struct {
	assetID *uuid.UUID
	userID  *uuid.UUID
	status  enums.TransferStatus
	window  pkgpagination.Window
}

func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.AssetTransfer, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetTransfer{})
	if opts.assetID != nil {
		query = query.Where("asset_id = ?", *opts.assetID)
	}
	if opts.userID != nil {
		query = query.Where("(from_user_id = ? OR to_user_id = ?)", *opts.userID, *opts.userID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}

	var rows []models.AssetTransfer
	err := query.Scopes(opts.window.Scope).Find(&rows).Error
	return rows, err
}

func (r *Repository) Pending(ctx context.Context) ([]models.AssetTransfer, error) {
	var rows []models.AssetTransfer
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("status = ?", enums.TransferStatusPending).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

type statusCount struct {
	Status enums.TransferStatus
	Count  int64
}

func (r *Repository) CountByStatus(ctx context.Context) ([]statusCount, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).Model(&models.AssetTransfer{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]models.AssetTransfer, error) {
	var rows []models.AssetTransfer
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func transferPosition(row models.AssetTransfer) pkgpagination.Cursor {
	return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
}

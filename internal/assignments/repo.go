package assignments

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

func (r *Repository) Create(ctx context.Context, record *models.AssetAssignment) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) Save(ctx context.Context, record *models.AssetAssignment) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetAssignment, error) {
	var record models.AssetAssignment
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindForUpdate re-reads the record holding a row lock. Call it after the
// asset lock so every workflow locks in the same order.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.AssetAssignment, error) {
	var record models.AssetAssignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CloseActive marks every active assignment of the asset as superseded.
func (r *Repository) CloseActive(ctx context.Context, assetID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.AssetAssignment{}).
		Where("asset_id = ? AND status = ?", assetID, enums.AssignmentStatusActive).
		Update("status", enums.AssignmentStatusCompleted)
	return res.RowsAffected, res.Error
}

func (r *Repository) ActiveForUser(ctx context.Context, userID uuid.UUID) ([]models.AssetAssignment, error) {
	var rows []models.AssetAssignment
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("assigned_to = ? AND status = ?", userID, enums.AssignmentStatusActive).
		Order("assigned_at DESC").
		Find(&rows).Error
	return rows, err
}

type listQuery struct {
	assetID *uuid.UUID
	userID  *uuid.UUID
	status  enums.AssignmentStatus
	window  pkgpagination.Window
}

func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.AssetAssignment, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetAssignment{})
	if opts.assetID != nil {
		query = query.Where("asset_id = ?", *opts.assetID)
	}
	if opts.userID != nil {
		query = query.Where("assigned_to = ?", *opts.userID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}

	var rows []models.AssetAssignment
	err := query.Scopes(opts.window.Scope).Find(&rows).Error
	return rows, err
}

func (r *Repository) CountByStatus(ctx context.Context, status enums.AssignmentStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AssetAssignment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

type departmentCount struct {
	DepartmentID uuid.UUID
	Count        int64
}

func (r *Repository) ActiveByDepartment(ctx context.Context) ([]departmentCount, error) {
	var rows []departmentCount
	err := r.db.WithContext(ctx).Model(&models.AssetAssignment{}).
		Select("department_id, COUNT(*) AS count").
		Where("status = ? AND department_id IS NOT NULL", enums.AssignmentStatusActive).
		Group("department_id").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

type holderCount struct {
	AssignedTo uuid.UUID
	Count      int64
}

func (r *Repository) TopActiveHolders(ctx context.Context, limit int) ([]holderCount, error) {
	var rows []holderCount
	err := r.db.WithContext(ctx).Model(&models.AssetAssignment{}).
		Select("assigned_to, COUNT(*) AS count").
		Where("status = ?", enums.AssignmentStatusActive).
		Group("assigned_to").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func assignmentPosition(row models.AssetAssignment) pkgpagination.Cursor {
	return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
}

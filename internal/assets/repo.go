package assets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

// Repository covers asset registration and the read side.
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

func (r *Repository) Create(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *Repository) TagExists(ctx context.Context, tag string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Asset{}).Where("asset_tag = ?", tag).Count(&count).Error
	return count > 0, err
}

type listQuery struct {
	status       enums.AssetStatus
	condition    enums.AssetCondition
	categoryID   *uuid.UUID
	locationID   *uuid.UUID
	departmentID *uuid.UUID
	assignedTo   *uuid.UUID
	search       string
	window       pkgpagination.Window
}

func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Asset, error) {
	query := r.db.WithContext(ctx).Model(&models.Asset{})
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.condition != "" {
		query = query.Where("condition = ?", opts.condition)
	}
	if opts.categoryID != nil {
		query = query.Where("category_id = ?", *opts.categoryID)
	}
	if opts.locationID != nil {
		query = query.Where("location_id = ?", *opts.locationID)
	}
	if opts.departmentID != nil {
		query = query.Where("department_id = ?", *opts.departmentID)
	}
	if opts.assignedTo != nil {
		query = query.Where("assigned_to = ?", *opts.assignedTo)
	}
	if term := strings.TrimSpace(opts.search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"(LOWER(asset_tag) LIKE ? OR LOWER(name) LIKE ? OR LOWER(serial_number) LIKE ? OR LOWER(model) LIKE ? OR LOWER(brand) LIKE ?)",
			like, like, like, like, like,
		)
	}

	var rows []models.Asset
	err := query.Scopes(opts.window.Scope).Find(&rows).Error
	return rows, err
}

type groupCount struct {
	Label string
	Count int64
}

// CountBy groups live assets by one of the whitelisted columns. NULL groups are skipped.
func (r *Repository) CountBy(ctx context.Context, column string) ([]groupCount, error) {
	switch column {
	case "status", "condition", "category_id", "location_id":
	default:
		return nil, gorm.ErrInvalidField
	}
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&models.Asset{}).
		Select(column + " AS label, COUNT(*) AS count").
		Where(column + " IS NOT NULL").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) CountAll(ctx context.Context) (total int64, critical int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.Asset{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&models.Asset{}).Where("is_critical = ?", true).Count(&critical).Error
	return total, critical, err
}

// PurchaseCosts returns every recorded purchase cost; summed in Go to keep decimal precision.
func (r *Repository) PurchaseCosts(ctx context.Context) ([]decimal.Decimal, error) {
	var costs []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Asset{}).
		Where("purchase_cost IS NOT NULL").
		Pluck("purchase_cost", &costs).Error
	return costs, err
}

// History holds every workflow record for one asset, newest first.
type History struct {
	Assignments  []models.AssetAssignment  `json:"assignments"`
	Checkouts    []models.AssetCheckout    `json:"checkouts"`
	Transfers    []models.AssetTransfer    `json:"transfers"`
	Maintenances []models.AssetMaintenance `json:"maintenances"`
	AuditLogs    []models.AuditLog         `json:"audit_logs"`
}

func (r *Repository) History(ctx context.Context, assetID uuid.UUID) (*History, error) {
	h := &History{}
	db := r.db.WithContext(ctx)
	if err := db.Where("asset_id = ?", assetID).Order("created_at DESC").Find(&h.Assignments).Error; err != nil {
		return nil, err
	}
	if err := db.Where("asset_id = ?", assetID).Order("created_at DESC").Find(&h.Checkouts).Error; err != nil {
		return nil, err
	}
	if err := db.Where("asset_id = ?", assetID).Order("created_at DESC").Find(&h.Transfers).Error; err != nil {
		return nil, err
	}
	if err := db.Where("asset_id = ?", assetID).Order("created_at DESC").Find(&h.Maintenances).Error; err != nil {
		return nil, err
	}

	ids := map[enums.AuditSubjectType][]uuid.UUID{
		enums.AuditSubjectAsset: {assetID},
	}
	for _, a := range h.Assignments {
		ids[enums.AuditSubjectAssignment] = append(ids[enums.AuditSubjectAssignment], a.ID)
	}
	for _, c := range h.Checkouts {
		ids[enums.AuditSubjectCheckout] = append(ids[enums.AuditSubjectCheckout], c.ID)
	}
	for _, tr := range h.Transfers {
		ids[enums.AuditSubjectTransfer] = append(ids[enums.AuditSubjectTransfer], tr.ID)
	}
	for _, m := range h.Maintenances {
		ids[enums.AuditSubjectMaintenance] = append(ids[enums.AuditSubjectMaintenance], m.ID)
	}

	audit := db.Model(&models.AuditLog{})
	first := true
	for subject, subjectIDs := range ids {
		if first {
			audit = audit.Where("model_type = ? AND model_id IN ?", subject, subjectIDs)
			first = false
			continue
		}
		audit = audit.Or("model_type = ? AND model_id IN ?", subject, subjectIDs)
	}
	if err := audit.Order("created_at DESC").Order("id DESC").Find(&h.AuditLogs).Error; err != nil {
		return nil, err
	}
	return h, nil
}

func (r *Repository) MaintenanceDueBetween(ctx context.Context, from, to time.Time) ([]models.AssetMaintenance, error) {
	var rows []models.AssetMaintenance
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date >= ? AND scheduled_date <= ?", enums.MaintenanceStatusScheduled, from, to).
		Order("scheduled_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) MaintenanceOverdue(ctx context.Context, now time.Time) ([]models.AssetMaintenance, error) {
	var rows []models.AssetMaintenance
	err := r.db.WithContext(ctx).
		Where("status NOT IN ? AND scheduled_date < ?", []enums.MaintenanceStatus{enums.MaintenanceStatusCompleted, enums.MaintenanceStatusCancelled}, now).
		Order("scheduled_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CheckoutsOverdue(ctx context.Context, now time.Time) ([]models.AssetCheckout, error) {
	var rows []models.AssetCheckout
	err := r.db.WithContext(ctx).
		Where("status = ? AND expected_return_at < ?", enums.CheckoutStatusCheckedOut, now).
		Order("expected_return_at ASC").
		Find(&rows).Error
	return rows, err
}

func assetPosition(row models.Asset) pkgpagination.Cursor {
	return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
}

package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

// Repository persists audit_logs. It has no update or delete path.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an audit repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx appends one row inside the caller's transaction.
func (r *Repository) InsertTx(tx *gorm.DB, entry *models.AuditLog) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(entry).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	var row models.AuditLog
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

type listQuery struct {
	action      enums.AuditAction
	subjectType enums.AuditSubjectType
	subjectID   *uuid.UUID
	userID      *uuid.UUID
	from        *time.Time
	to          *time.Time
	search      string
	window      pkgpagination.Window
}

// List returns audit rows newest first using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if opts.action != "" {
		query = query.Where("action = ?", opts.action)
	}
	if opts.subjectType != "" {
		query = query.Where("model_type = ?", opts.subjectType)
	}
	if opts.subjectID != nil {
		query = query.Where("model_id = ?", *opts.subjectID)
	}
	if opts.userID != nil {
		query = query.Where("user_id = ?", *opts.userID)
	}
	if opts.from != nil {
		query = query.Where("created_at >= ?", *opts.from)
	}
	if opts.to != nil {
		query = query.Where("created_at <= ?", *opts.to)
	}
	if term := strings.TrimSpace(opts.search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(description) LIKE ? OR LOWER(action) LIKE ? OR LOWER(model_type) LIKE ?)", like, like, like)
	}

	var rows []models.AuditLog
	if err := query.Scopes(opts.window.Scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ForSubject returns every entry about one record in insertion order.
func (r *Repository) ForSubject(ctx context.Context, subjectType enums.AuditSubjectType, subjectID uuid.UUID) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("model_type = ? AND model_id = ?", subjectType, subjectID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ForSubjects returns entries about any of the given records, oldest first.
func (r *Repository) ForSubjects(ctx context.Context, subjectType enums.AuditSubjectType, ids []uuid.UUID) ([]models.AuditLog, error) {
	if len(ids) == 0 {
		return []models.AuditLog{}, nil
	}
	var rows []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("model_type = ? AND model_id IN ?", subjectType, ids).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

type labelCount struct {
	Label string
	Count int64
}

type userCount struct {
	UserID uuid.UUID
	Count  int64
}

func (r *Repository) inRange(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("created_at >= ? AND created_at <= ?", from, to)
}

// CountBetween counts rows with created_at in [from, to].
func (r *Repository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.inRange(ctx, from, to).Count(&total).Error
	return total, err
}

// CountByColumn groups rows in range by action or model_type.
func (r *Repository) CountByColumn(ctx context.Context, column string, from, to time.Time) ([]labelCount, error) {
	switch column {
	case "action", "model_type":
	default:
		return nil, errors.New("unsupported group column")
	}
	var rows []labelCount
	err := r.inRange(ctx, from, to).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// TopUsers returns the most active non-system users in range.
func (r *Repository) TopUsers(ctx context.Context, from, to time.Time, limit int) ([]userCount, error) {
	var rows []userCount
	err := r.inRange(ctx, from, to).
		Select("user_id, COUNT(*) AS count").
		Where("user_id IS NOT NULL").
		Group("user_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TimestampsBetween returns created_at values in range, ascending.
func (r *Repository) TimestampsBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := r.inRange(ctx, from, to).
		Order("created_at ASC").
		Pluck("created_at", &stamps).Error
	return stamps, err
}

func auditPosition(row models.AuditLog) pkgpagination.Cursor {
	return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
}

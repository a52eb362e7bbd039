package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
	topUsersLimit      = 10
	defaultStatsWindow = 30 * 24 * time.Hour
)

type auditReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)
	List(ctx context.Context, opts listQuery) ([]models.AuditLog, error)
	ForSubject(ctx context.Context, subjectType enums.AuditSubjectType, subjectID uuid.UUID) ([]models.AuditLog, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountByColumn(ctx context.Context, column string, from, to time.Time) ([]labelCount, error)
	TopUsers(ctx context.Context, from, to time.Time, limit int) ([]userCount, error)
	TimestampsBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Service exposes read-only queries over the audit trail.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)
	ForSubject(ctx context.Context, subjectType enums.AuditSubjectType, subjectID uuid.UUID) ([]models.AuditLog, error)
	ForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.AuditLog, error)
	Recent(ctx context.Context, limit int, subjectType enums.AuditSubjectType) ([]models.AuditLog, error)
	Search(ctx context.Context, term string, limit int) ([]models.AuditLog, error)
	Statistics(ctx context.Context, from, to *time.Time) (*Statistics, error)
	CompareChanges(ctx context.Context, id uuid.UUID) (*ChangeSet, error)
	Timeline(ctx context.Context, subjectType enums.AuditSubjectType, subjectID uuid.UUID) ([]TimelineDay, error)
}

type service struct {
	repo auditReader
	now  func() time.Time
}

// NewService builds the audit query service.
func NewService(repo auditReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Action != "" && !params.Action.IsValid() {
		return nil, pkgerrors.FieldError("action", "unknown audit action")
	}
	if params.SubjectType != "" && !params.SubjectType.IsValid() {
		return nil, pkgerrors.FieldError("model_type", "unknown subject type")
	}

	window, err := params.Window()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query := listQuery{
		action:      params.Action,
		subjectType: params.SubjectType,
		subjectID:   params.SubjectID,
		userID:      params.UserID,
		from:        params.From,
		to:          params.To,
		window:      window,
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit logs")
	}

	items, next := pkgpagination.Cut(window, rows, auditPosition)
	return &ListResult{Items: items, Cursor: next}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "audit log not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup audit log")
	}
	return row, nil
}

func (s *service) ForSubject(ctx context.Context, subjectType enums.AuditSubjectType, subjectID uuid.UUID) ([]models.AuditLog, error) {
	if !subjectType.IsValid() {
		return nil, pkgerrors.FieldError("model_type", "unknown subject type")
	}
	rows, err := s.repo.ForSubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subject audit logs")
	}
	return rows, nil
}

func (s *service) ForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.FieldError("user_id", "user id is required")
	}
	window := pkgpagination.First(limit)
	rows, err := s.repo.List(ctx, listQuery{userID: &userID, window: window})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user audit logs")
	}
	rows, _ = pkgpagination.Cut(window, rows, auditPosition)
	return rows, nil
}

func (s *service) Recent(ctx context.Context, limit int, subjectType enums.AuditSubjectType) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	if subjectType != "" && !subjectType.IsValid() {
		return nil, pkgerrors.FieldError("model_type", "unknown subject type")
	}
	window := pkgpagination.Window{Limit: limit}
	rows, err := s.repo.List(ctx, listQuery{subjectType: subjectType, window: window})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recent audit logs")
	}
	rows, _ = pkgpagination.Cut(window, rows, auditPosition)
	return rows, nil
}

func (s *service) Search(ctx context.Context, term string, limit int) ([]models.AuditLog, error) {
	if strings.TrimSpace(term) == "" {
		return nil, pkgerrors.FieldError("search", "search query is required")
	}
	window := pkgpagination.First(limit)
	rows, err := s.repo.List(ctx, listQuery{search: term, window: window})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search audit logs")
	}
	rows, _ = pkgpagination.Cut(window, rows, auditPosition)
	return rows, nil
}

func (s *service) Statistics(ctx context.Context, from, to *time.Time) (*Statistics, error) {
	end := s.now().UTC()
	if to != nil {
		end = to.UTC()
	}
	start := end.Add(-defaultStatsWindow)
	if from != nil {
		start = from.UTC()
	}
	if start.After(end) {
		return nil, pkgerrors.FieldError("date_from", "date_from must not be after date_to")
	}

	total, err := s.repo.CountBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count audit logs")
	}
	byAction, err := s.repo.CountByColumn(ctx, "action", start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count audit logs by action")
	}
	bySubject, err := s.repo.CountByColumn(ctx, "model_type", start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count audit logs by subject")
	}
	users, err := s.repo.TopUsers(ctx, start, end, topUsersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count audit logs by user")
	}
	stamps, err := s.repo.TimestampsBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load audit timestamps")
	}

	stats := &Statistics{
		From:          start,
		To:            end,
		Total:         total,
		ByAction:      toCountBy(byAction),
		BySubjectType: toCountBy(bySubject),
		TopUsers:      make([]UserActivity, 0, len(users)),
		Daily:         dailyCounts(stamps),
	}
	for _, u := range users {
		stats.TopUsers = append(stats.TopUsers, UserActivity{UserID: u.UserID, Count: u.Count})
	}
	return stats, nil
}

func (s *service) CompareChanges(ctx context.Context, id uuid.UUID) (*ChangeSet, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(row.OldValues) == 0 || len(row.NewValues) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no values to compare")
	}
	changes, added, removed, changed, err := diffValues(row.OldValues, row.NewValues)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "audit values are not json objects")
	}
	return &ChangeSet{
		Log:     *row,
		Changes: changes,
		Added:   added,
		Removed: removed,
		Changed: changed,
	}, nil
}

func (s *service) Timeline(ctx context.Context, subjectType enums.AuditSubjectType, subjectID uuid.UUID) ([]TimelineDay, error) {
	rows, err := s.ForSubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	days := []TimelineDay{}
	for _, row := range rows {
		date := row.CreatedAt.UTC().Format("2006-01-02")
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Entries = append(days[n-1].Entries, row)
			continue
		}
		days = append(days, TimelineDay{Date: date, Entries: []models.AuditLog{row}})
	}
	return days, nil
}

func toCountBy(rows []labelCount) []CountBy {
	out := make([]CountBy, 0, len(rows))
	for _, row := range rows {
		out = append(out, CountBy{Label: row.Label, Count: row.Count})
	}
	return out
}

// dailyCounts buckets ascending timestamps by UTC calendar day.
func dailyCounts(stamps []time.Time) []DailyCount {
	out := []DailyCount{}
	for _, ts := range stamps {
		date := ts.UTC().Format("2006-01-02")
		if n := len(out); n > 0 && out[n-1].Date == date {
			out[n-1].Count++
			continue
		}
		out = append(out, DailyCount{Date: date, Count: 1})
	}
	return out
}

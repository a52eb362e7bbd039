package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

// ListParams filters the audit list. Zero values are ignored.
type ListParams struct {
	Action      enums.AuditAction
	SubjectType enums.AuditSubjectType
	SubjectID   *uuid.UUID
	UserID      *uuid.UUID
	From        *time.Time
	To          *time.Time
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.AuditLog `json:"items"`
	Cursor string            `json:"cursor"`
}

type CountBy struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type UserActivity struct {
	UserID uuid.UUID `json:"user_id"`
	Count  int64     `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type Statistics struct {
	From          time.Time      `json:"from"`
	To            time.Time      `json:"to"`
	Total         int64          `json:"total"`
	ByAction      []CountBy      `json:"by_action"`
	BySubjectType []CountBy      `json:"by_subject_type"`
	TopUsers      []UserActivity `json:"top_users"`
	Daily         []DailyCount   `json:"daily"`
}

// FieldChange is one key that differs between old_values and new_values.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

type ChangeSet struct {
	Log     models.AuditLog        `json:"log"`
	Changes map[string]FieldChange `json:"changes"`
	Added   []string               `json:"added"`
	Removed []string               `json:"removed"`
	Changed []string               `json:"changed"`
}

type TimelineDay struct {
	Date    string            `json:"date"`
	Entries []models.AuditLog `json:"entries"`
}

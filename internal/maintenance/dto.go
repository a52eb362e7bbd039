package maintenance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

type ScheduleInput struct {
	AssetID       uuid.UUID
	Type          enums.MaintenanceType
	Title         string
	Description   string
	ScheduledDate time.Time
	Priority      enums.MaintenancePriority
	Cost          *decimal.Decimal
	PerformedBy   *uuid.UUID
	VendorID      *uuid.UUID
	Notes         *string
}

// UpdateInput edits an open record. Nil fields are left alone; Notes is appended.
type UpdateInput struct {
	Title         *string
	Description   *string
	ScheduledDate *time.Time
	Priority      *enums.MaintenancePriority
	Cost          *decimal.Decimal
	PerformedBy   *uuid.UUID
	VendorID      *uuid.UUID
	PartsReplaced *string
	DowntimeHours *int
	Notes         *string
}

// CompleteInput closes a record. Nil Cost, PartsReplaced and DowntimeHours keep
// the values already stored.
type CompleteInput struct {
	CompletedDate  *time.Time
	Cost           *decimal.Decimal
	PartsReplaced  *string
	DowntimeHours  *int
	Notes          *string
	AssetCondition enums.AssetCondition
}

type ListParams struct {
	AssetID  *uuid.UUID
	Status   enums.MaintenanceStatus
	Type     enums.MaintenanceType
	Priority enums.MaintenancePriority
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.AssetMaintenance `json:"items"`
	Cursor string                    `json:"cursor"`
}

type CountBy struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Statistics struct {
	Total      int64           `json:"total"`
	Scheduled  int64           `json:"scheduled"`
	InProgress int64           `json:"in_progress"`
	Completed  int64           `json:"completed"`
	Cancelled  int64           `json:"cancelled"`
	Overdue    int64           `json:"overdue"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	ByType     []CountBy       `json:"by_type"`
	ByPriority []CountBy       `json:"by_priority"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// AssetMaintenance is one service engagement. Notes only ever grow.
type AssetMaintenance struct {
	ID              uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AssetID         uuid.UUID                 `gorm:"column:asset_id;type:uuid;not null;index:idx_asset_maintenances_asset_status" json:"asset_id"`
	MaintenanceType enums.MaintenanceType     `gorm:"column:maintenance_type;type:varchar(32);not null" json:"maintenance_type"`
	Title           string                    `gorm:"column:title;not null" json:"title"`
	Description     *string                   `gorm:"column:description;type:text" json:"description"`
	ScheduledDate   time.Time                 `gorm:"column:scheduled_date;not null;index" json:"scheduled_date"`
	CompletedDate   *time.Time                `gorm:"column:completed_date" json:"completed_date"`
	Cost            *decimal.Decimal          `gorm:"column:cost;type:numeric(10,2)" json:"cost"`
	PerformedBy     *uuid.UUID                `gorm:"column:performed_by;type:uuid" json:"performed_by"`
	VendorID        *uuid.UUID                `gorm:"column:vendor_id;type:uuid" json:"vendor_id"`
	Status          enums.MaintenanceStatus   `gorm:"column:status;type:varchar(32);not null;default:'scheduled';index:idx_asset_maintenances_asset_status" json:"status"`
	Priority        enums.MaintenancePriority `gorm:"column:priority;type:varchar(32);not null;default:'medium'" json:"priority"`
	Notes           *string                   `gorm:"column:notes;type:text" json:"notes"`
	PartsReplaced   *string                   `gorm:"column:parts_replaced;type:text" json:"parts_replaced"`
	DowntimeHours   *int                      `gorm:"column:downtime_hours" json:"downtime_hours"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Asset *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

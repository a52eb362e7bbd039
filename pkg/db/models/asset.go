package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// Asset is the mutable resource under lifecycle control. Status changes go
// through assets.StateStore only.
type Asset struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AssetTag            string               `gorm:"column:asset_tag;not null;uniqueIndex:ux_assets_asset_tag" json:"asset_tag"`
	Name                string               `gorm:"column:name;not null" json:"name"`
	Description         *string              `gorm:"column:description;type:text" json:"description"`
	CategoryID          *uuid.UUID           `gorm:"column:category_id;type:uuid" json:"category_id"`
	Brand               *string              `gorm:"column:brand" json:"brand"`
	Model               *string              `gorm:"column:model" json:"model"`
	SerialNumber        *string              `gorm:"column:serial_number;index" json:"serial_number"`
	PurchaseDate        *time.Time           `gorm:"column:purchase_date" json:"purchase_date"`
	PurchaseCost        *decimal.Decimal     `gorm:"column:purchase_cost;type:numeric(12,2)" json:"purchase_cost"`
	LocationID          *uuid.UUID           `gorm:"column:location_id;type:uuid" json:"location_id"`
	DepartmentID        *uuid.UUID           `gorm:"column:department_id;type:uuid" json:"department_id"`
	AssignedTo          *uuid.UUID           `gorm:"column:assigned_to;type:uuid;index" json:"assigned_to"`
	AssignedAt          *time.Time           `gorm:"column:assigned_at" json:"assigned_at"`
	Status              enums.AssetStatus    `gorm:"column:status;type:varchar(32);not null;default:'available';index" json:"status"`
	Condition           enums.AssetCondition `gorm:"column:condition;type:varchar(32);not null;default:'good'" json:"condition"`
	IsCritical          bool                 `gorm:"column:is_critical;not null;default:false" json:"is_critical"`
	NextMaintenanceDate *time.Time           `gorm:"column:next_maintenance_date" json:"next_maintenance_date"`
	Notes               *string              `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt       `gorm:"column:deleted_at;index" json:"-"`
}

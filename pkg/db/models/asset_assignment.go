package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// AssetAssignment is one long-term custody period.
type AssetAssignment struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AssetID         uuid.UUID              `gorm:"column:asset_id;type:uuid;not null;index:idx_asset_assignments_asset_status" json:"asset_id"`
	AssignedTo      uuid.UUID              `gorm:"column:assigned_to;type:uuid;not null;index" json:"assigned_to"`
	AssignedBy      *uuid.UUID             `gorm:"column:assigned_by;type:uuid" json:"assigned_by"`
	LocationID      *uuid.UUID             `gorm:"column:location_id;type:uuid" json:"location_id"`
	DepartmentID    *uuid.UUID             `gorm:"column:department_id;type:uuid" json:"department_id"`
	AssignedAt      time.Time              `gorm:"column:assigned_at;not null" json:"assigned_at"`
	ReturnedAt      *time.Time             `gorm:"column:returned_at" json:"returned_at"`
	AssignmentNotes *string                `gorm:"column:assignment_notes;type:text" json:"assignment_notes"`
	ReturnNotes     *string                `gorm:"column:return_notes;type:text" json:"return_notes"`
	ReturnCondition *enums.AssetCondition  `gorm:"column:return_condition;type:varchar(32)" json:"return_condition"`
	Status          enums.AssignmentStatus `gorm:"column:status;type:varchar(32);not null;default:'active';index:idx_asset_assignments_asset_status" json:"status"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Asset *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

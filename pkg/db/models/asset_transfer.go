package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// AssetTransfer is a proposed or applied relocation. The from_* columns are a
// point-in-time copy of the asset custody when the transfer was created.
type AssetTransfer struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AssetID          uuid.UUID            `gorm:"column:asset_id;type:uuid;not null;index:idx_asset_transfers_asset_status" json:"asset_id"`
	FromUserID       *uuid.UUID           `gorm:"column:from_user_id;type:uuid" json:"from_user_id"`
	FromLocationID   *uuid.UUID           `gorm:"column:from_location_id;type:uuid" json:"from_location_id"`
	FromDepartmentID *uuid.UUID           `gorm:"column:from_department_id;type:uuid" json:"from_department_id"`
	ToUserID         *uuid.UUID           `gorm:"column:to_user_id;type:uuid" json:"to_user_id"`
	ToLocationID     *uuid.UUID           `gorm:"column:to_location_id;type:uuid" json:"to_location_id"`
	ToDepartmentID   *uuid.UUID           `gorm:"column:to_department_id;type:uuid" json:"to_department_id"`
	TransferredBy    *uuid.UUID           `gorm:"column:transferred_by;type:uuid" json:"transferred_by"`
	TransferDate     time.Time            `gorm:"column:transfer_date;not null;index" json:"transfer_date"`
	Reason           *string              `gorm:"column:reason;type:text" json:"reason"`
	Notes            *string              `gorm:"column:notes;type:text" json:"notes"`
	Status           enums.TransferStatus `gorm:"column:status;type:varchar(32);not null;default:'pending';index:idx_asset_transfers_asset_status" json:"status"`
	ApprovedBy       *uuid.UUID           `gorm:"column:approved_by;type:uuid" json:"approved_by"`
	ApprovedAt       *time.Time           `gorm:"column:approved_at" json:"approved_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Asset *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// AssetCheckout is one short-term loan period.
type AssetCheckout struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AssetID          uuid.UUID             `gorm:"column:asset_id;type:uuid;not null;index:idx_asset_checkouts_asset_status" json:"asset_id"`
	UserID           uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	CheckedOutBy     *uuid.UUID            `gorm:"column:checked_out_by;type:uuid" json:"checked_out_by"`
	CheckedOutAt     time.Time             `gorm:"column:checked_out_at;not null;index" json:"checked_out_at"`
	ExpectedReturnAt *time.Time            `gorm:"column:expected_return_at" json:"expected_return_at"`
	CheckedInAt      *time.Time            `gorm:"column:checked_in_at" json:"checked_in_at"`
	CheckedInBy      *uuid.UUID            `gorm:"column:checked_in_by;type:uuid" json:"checked_in_by"`
	CheckoutNotes    *string               `gorm:"column:checkout_notes;type:text" json:"checkout_notes"`
	CheckinNotes     *string               `gorm:"column:checkin_notes;type:text" json:"checkin_notes"`
	ConditionOut     enums.AssetCondition  `gorm:"column:condition_out;type:varchar(32);not null;default:'good'" json:"condition_out"`
	ConditionIn      *enums.AssetCondition `gorm:"column:condition_in;type:varchar(32)" json:"condition_in"`
	Status           enums.CheckoutStatus  `gorm:"column:status;type:varchar(32);not null;default:'checked_out';index:idx_asset_checkouts_asset_status" json:"status"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Asset *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

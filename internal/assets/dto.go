package assets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

// RegisterInput is the data needed to create an asset.
type RegisterInput struct {
	AssetTag            string
	Name                string
	Description         *string
	CategoryID          *uuid.UUID
	Brand               *string
	Model               *string
	SerialNumber        *string
	PurchaseDate        *time.Time
	PurchaseCost        *decimal.Decimal
	LocationID          *uuid.UUID
	DepartmentID        *uuid.UUID
	Condition           enums.AssetCondition
	IsCritical          bool
	NextMaintenanceDate *time.Time
	Notes               *string
}

type ListParams struct {
	Status       enums.AssetStatus
	Condition    enums.AssetCondition
	CategoryID   *uuid.UUID
	LocationID   *uuid.UUID
	DepartmentID *uuid.UUID
	AssignedTo   *uuid.UUID
	Search       string
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.Asset `json:"items"`
	Cursor string         `json:"cursor"`
}

type GroupCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Statistics struct {
	Total         int64           `json:"total"`
	Critical      int64           `json:"critical"`
	ByStatus      []GroupCount    `json:"by_status"`
	ByCondition   []GroupCount    `json:"by_condition"`
	ByCategory    []GroupCount    `json:"by_category"`
	ByLocation    []GroupCount    `json:"by_location"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
}

// Alerts is the dashboard feed of things needing attention.
type Alerts struct {
	WindowDays         int                       `json:"window_days"`
	MaintenanceDue     []models.AssetMaintenance `json:"maintenance_due"`
	MaintenanceOverdue []models.AssetMaintenance `json:"maintenance_overdue"`
	CheckoutsOverdue   []models.AssetCheckout    `json:"checkouts_overdue"`
}

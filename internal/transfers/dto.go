package transfers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

// Destination is where a transfer moves the asset. At least one field is set.
type Destination struct {
	UserID       *uuid.UUID
	LocationID   *uuid.UUID
	DepartmentID *uuid.UUID
}

func (d Destination) empty() bool {
	return d.UserID == nil && d.LocationID == nil && d.DepartmentID == nil
}

type InitiateInput struct {
	AssetID      uuid.UUID
	To           Destination
	Reason       string
	Notes        *string
	TransferDate *time.Time
	// RequiresApproval overrides the configured default when set.
	RequiresApproval *bool
}

type ListParams struct {
	AssetID *uuid.UUID
	UserID  *uuid.UUID
	Status  enums.TransferStatus
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.AssetTransfer `json:"items"`
	Cursor string                 `json:"cursor"`
}

type Statistics struct {
	Total     int64                  `json:"total"`
	Pending   int64                  `json:"pending"`
	Approved  int64                  `json:"approved"`
	Completed int64                  `json:"completed"`
	Rejected  int64                  `json:"rejected"`
	Cancelled int64                  `json:"cancelled"`
	Recent    []models.AssetTransfer `json:"recent"`
}

package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

type AssignInput struct {
	AssetID      uuid.UUID
	AssignedTo   uuid.UUID
	LocationID   *uuid.UUID
	DepartmentID *uuid.UUID
	AssignedAt   *time.Time
	Notes        *string
}

type ReturnInput struct {
	Condition enums.AssetCondition
	Notes     *string
}

type ListParams struct {
	AssetID *uuid.UUID
	UserID  *uuid.UUID
	Status  enums.AssignmentStatus
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.AssetAssignment `json:"items"`
	Cursor string                   `json:"cursor"`
}

type DepartmentCount struct {
	DepartmentID uuid.UUID `json:"department_id"`
	Count        int64     `json:"count"`
}

type HolderCount struct {
	UserID uuid.UUID `json:"user_id"`
	Count  int64     `json:"count"`
}

type Statistics struct {
	Total        int64             `json:"total"`
	Active       int64             `json:"active"`
	Returned     int64             `json:"returned"`
	ByDepartment []DepartmentCount `json:"by_department"`
	TopHolders   []HolderCount     `json:"top_holders"`
}

package checkouts

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

type CheckoutInput struct {
	AssetID          uuid.UUID
	UserID           uuid.UUID
	ExpectedReturnAt *time.Time
	Notes            *string
}

type CheckinInput struct {
	Condition enums.AssetCondition
	Notes     *string
}

type ExtendInput struct {
	ExpectedReturnAt time.Time
	Reason           *string
}

type IssueInput struct {
	Type        enums.IssueType
	Description string
	Condition   *enums.AssetCondition
}

type ListParams struct {
	AssetID *uuid.UUID
	UserID  *uuid.UUID
	Status  enums.CheckoutStatus
	pkgpagination.Params
}

type ListResult struct {
	Items  []models.AssetCheckout `json:"items"`
	Cursor string                 `json:"cursor"`
}

type RankedCount struct {
	ID    uuid.UUID `json:"id"`
	Count int64     `json:"count"`
}

type Statistics struct {
	Total          int64         `json:"total"`
	Active         int64         `json:"active"`
	Completed      int64         `json:"completed"`
	Overdue        int64         `json:"overdue"`
	TodayCheckouts int64         `json:"today_checkouts"`
	TodayCheckins  int64         `json:"today_checkins"`
	TopUsers       []RankedCount `json:"top_users"`
	TopAssets      []RankedCount `json:"top_assets"`
}

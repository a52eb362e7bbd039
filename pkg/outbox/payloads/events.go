package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// AssetLifecycleChangedEvent is emitted by every workflow mutation.
type AssetLifecycleChangedEvent struct {
	AssetID      uuid.UUID              `json:"asset_id"`
	Action       enums.AuditAction      `json:"action"`
	SubjectType  enums.AuditSubjectType `json:"subject_type"`
	SubjectID    uuid.UUID              `json:"subject_id"`
	StatusBefore enums.AssetStatus      `json:"status_before"`
	StatusAfter  enums.AssetStatus      `json:"status_after"`
	UserID       *uuid.UUID             `json:"user_id,omitempty"`
}

// CheckoutOverdueEvent asks the notification service to remind the borrower.
type CheckoutOverdueEvent struct {
	CheckoutID       uuid.UUID `json:"checkout_id"`
	AssetID          uuid.UUID `json:"asset_id"`
	UserID           uuid.UUID `json:"user_id"`
	ExpectedReturnAt time.Time `json:"expected_return_at"`
	DaysOverdue      int       `json:"days_overdue"`
}

// MaintenanceDueEvent flags maintenance that is upcoming or past its schedule.
type MaintenanceDueEvent struct {
	MaintenanceID uuid.UUID                 `json:"maintenance_id"`
	AssetID       uuid.UUID                 `json:"asset_id"`
	Type          enums.MaintenanceType     `json:"type"`
	Priority      enums.MaintenancePriority `json:"priority"`
	ScheduledAt   time.Time                 `json:"scheduled_at"`
	Overdue       bool                      `json:"overdue"`
	ReportedBy    *uuid.UUID                `json:"reported_by,omitempty"`
}

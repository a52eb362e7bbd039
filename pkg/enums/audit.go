package enums

import "fmt"

// AuditAction tags what a state-changing operation did.
type AuditAction string

const (
	AuditActionCreated              AuditAction = "created"
	AuditActionAssigned             AuditAction = "assigned"
	AuditActionReturned             AuditAction = "returned"
	AuditActionCheckedOut           AuditAction = "checked_out"
	AuditActionCheckedIn            AuditAction = "checked_in"
	AuditActionCheckoutExtended     AuditAction = "checkout_extended"
	AuditActionIssueReported        AuditAction = "issue_reported"
	AuditActionTransferInitiated    AuditAction = "transfer_initiated"
	AuditActionTransferApproved     AuditAction = "transfer_approved"
	AuditActionTransferRejected     AuditAction = "transfer_rejected"
	AuditActionTransferCancelled    AuditAction = "transfer_cancelled"
	AuditActionMaintenanceScheduled AuditAction = "maintenance_scheduled"
	AuditActionMaintenanceUpdated   AuditAction = "maintenance_updated"
	AuditActionMaintenanceStarted   AuditAction = "maintenance_started"
	AuditActionMaintenanceCompleted AuditAction = "maintenance_completed"
	AuditActionMaintenanceCancelled AuditAction = "maintenance_cancelled"
)

var validAuditActions = []AuditAction{
	AuditActionCreated,
	AuditActionAssigned,
	AuditActionReturned,
	AuditActionCheckedOut,
	AuditActionCheckedIn,
	AuditActionCheckoutExtended,
	AuditActionIssueReported,
	AuditActionTransferInitiated,
	AuditActionTransferApproved,
	AuditActionTransferRejected,
	AuditActionTransferCancelled,
	AuditActionMaintenanceScheduled,
	AuditActionMaintenanceUpdated,
	AuditActionMaintenanceStarted,
	AuditActionMaintenanceCompleted,
	AuditActionMaintenanceCancelled,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

// AuditSubjectType names the record kind an audit entry describes.
type AuditSubjectType string

const (
	AuditSubjectAsset       AuditSubjectType = "Asset"
	AuditSubjectAssignment  AuditSubjectType = "AssetAssignment"
	AuditSubjectCheckout    AuditSubjectType = "AssetCheckout"
	AuditSubjectTransfer    AuditSubjectType = "AssetTransfer"
	AuditSubjectMaintenance AuditSubjectType = "AssetMaintenance"
)

var validAuditSubjectTypes = []AuditSubjectType{
	AuditSubjectAsset,
	AuditSubjectAssignment,
	AuditSubjectCheckout,
	AuditSubjectTransfer,
	AuditSubjectMaintenance,
}

// String implements fmt.Stringer.
func (s AuditSubjectType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AuditSubjectType.
func (s AuditSubjectType) IsValid() bool {
	for _, candidate := range validAuditSubjectTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAuditSubjectType converts raw input into an AuditSubjectType.
func ParseAuditSubjectType(value string) (AuditSubjectType, error) {
	for _, candidate := range validAuditSubjectTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit subject type %q", value)
}

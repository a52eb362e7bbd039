package lifecycle

import (
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
)

// Requirement describes which asset statuses a workflow action accepts.
// An empty From accepts any status.
type Requirement struct {
	From []enums.AssetStatus
	To   enums.AssetStatus
}

var transitions = map[enums.AuditAction]Requirement{
	enums.AuditActionAssigned:             {From: []enums.AssetStatus{enums.AssetStatusAvailable, enums.AssetStatusInUse}, To: enums.AssetStatusInUse},
	enums.AuditActionReturned:             {To: enums.AssetStatusAvailable},
	enums.AuditActionCheckedOut:           {From: []enums.AssetStatus{enums.AssetStatusAvailable}, To: enums.AssetStatusInUse},
	enums.AuditActionCheckedIn:            {To: enums.AssetStatusAvailable},
	enums.AuditActionMaintenanceStarted:   {To: enums.AssetStatusMaintenance},
	enums.AuditActionMaintenanceCompleted: {To: enums.AssetStatusAvailable},
}

// RequirementFor returns the status contract of a workflow action.
func RequirementFor(action enums.AuditAction) (Requirement, bool) {
	req, ok := transitions[action]
	return req, ok
}

// Accepts reports whether the action may run while the asset has status current.
func Accepts(action enums.AuditAction, current enums.AssetStatus) bool {
	req, ok := transitions[action]
	if !ok || len(req.From) == 0 {
		return true
	}
	for _, s := range req.From {
		if s == current {
			return true
		}
	}
	return false
}

// RequireAvailable fails with Conflict when the asset cannot be taken for the action.
func RequireAvailable(action enums.AuditAction, current enums.AssetStatus) error {
	if Accepts(action, current) {
		return nil
	}
	req := transitions[action]
	allowed := make([]string, 0, len(req.From))
	for _, s := range req.From {
		allowed = append(allowed, s.String())
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "asset is not available").
		WithDetails(map[string]any{"current_status": current, "allowed_statuses": allowed})
}

// IssueStatus maps a reported checkout issue to the asset status it leaves behind.
func IssueStatus(issue enums.IssueType) (enums.AssetStatus, bool) {
	switch issue {
	case enums.IssueTypeLost:
		return enums.AssetStatusLost, true
	case enums.IssueTypeStolen:
		return enums.AssetStatusStolen, true
	case enums.IssueTypeDamaged:
		return enums.AssetStatusRepair, true
	default:
		return "", false
	}
}

// NextMaintenanceMonths returns how far ahead completed maintenance of the
// given type schedules the next one. Zero clears the date.
func NextMaintenanceMonths(t enums.MaintenanceType) int {
	switch t {
	case enums.MaintenanceTypePreventive:
		return 3
	case enums.MaintenanceTypeRoutine:
		return 1
	default:
		return 0
	}
}

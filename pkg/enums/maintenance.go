package enums

import "fmt"

// MaintenanceType classifies a service engagement.
type MaintenanceType string

const (
	MaintenanceTypePreventive MaintenanceType = "preventive"
	MaintenanceTypeCorrective MaintenanceType = "corrective"
	MaintenanceTypePredictive MaintenanceType = "predictive"
	MaintenanceTypeRoutine    MaintenanceType = "routine"
	MaintenanceTypeEmergency  MaintenanceType = "emergency"
)

var validMaintenanceTypes = []MaintenanceType{
	MaintenanceTypePreventive,
	MaintenanceTypeCorrective,
	MaintenanceTypePredictive,
	MaintenanceTypeRoutine,
	MaintenanceTypeEmergency,
}

// String implements fmt.Stringer.
func (t MaintenanceType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known MaintenanceType.
func (t MaintenanceType) IsValid() bool {
	for _, candidate := range validMaintenanceTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMaintenanceType converts raw input into a MaintenanceType.
func ParseMaintenanceType(value string) (MaintenanceType, error) {
	for _, candidate := range validMaintenanceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance type %q", value)
}

// MaintenanceStatus tracks the service lifecycle.
type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
	MaintenanceStatusOverdue    MaintenanceStatus = "overdue"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusScheduled,
	MaintenanceStatusInProgress,
	MaintenanceStatusCompleted,
	MaintenanceStatusCancelled,
	MaintenanceStatusOverdue,
}

// String implements fmt.Stringer.
func (s MaintenanceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MaintenanceStatus.
func (s MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOpen reports whether the engagement can still be started, completed or cancelled.
func (s MaintenanceStatus) IsOpen() bool {
	switch s {
	case MaintenanceStatusScheduled, MaintenanceStatusInProgress:
		return true
	default:
		return false
	}
}

// ParseMaintenanceStatus converts raw input into a MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}

// MaintenancePriority ranks scheduled work.
type MaintenancePriority string

const (
	MaintenancePriorityLow      MaintenancePriority = "low"
	MaintenancePriorityMedium   MaintenancePriority = "medium"
	MaintenancePriorityHigh     MaintenancePriority = "high"
	MaintenancePriorityCritical MaintenancePriority = "critical"
)

var validMaintenancePriorities = []MaintenancePriority{
	MaintenancePriorityLow,
	MaintenancePriorityMedium,
	MaintenancePriorityHigh,
	MaintenancePriorityCritical,
}

// String implements fmt.Stringer.
func (p MaintenancePriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known MaintenancePriority.
func (p MaintenancePriority) IsValid() bool {
	for _, candidate := range validMaintenancePriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseMaintenancePriority converts raw input into a MaintenancePriority.
func ParseMaintenancePriority(value string) (MaintenancePriority, error) {
	for _, candidate := range validMaintenancePriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance priority %q", value)
}

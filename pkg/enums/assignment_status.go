package enums

import "fmt"

// AssignmentStatus tracks a custody period.
type AssignmentStatus string

const (
	AssignmentStatusActive      AssignmentStatus = "active"
	AssignmentStatusReturned    AssignmentStatus = "returned"
	AssignmentStatusTransferred AssignmentStatus = "transferred"
	// AssignmentStatusCompleted marks a record closed because a newer
	// assignment replaced it.
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusActive,
	AssignmentStatusReturned,
	AssignmentStatusTransferred,
	AssignmentStatusCompleted,
}

// String implements fmt.Stringer.
func (s AssignmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (s AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}

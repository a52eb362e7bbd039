package enums

import "fmt"

// CheckoutStatus tracks a short-term loan.
type CheckoutStatus string

const (
	CheckoutStatusCheckedOut CheckoutStatus = "checked_out"
	CheckoutStatusCheckedIn  CheckoutStatus = "checked_in"
	CheckoutStatusOverdue    CheckoutStatus = "overdue"
)

var validCheckoutStatuses = []CheckoutStatus{
	CheckoutStatusCheckedOut,
	CheckoutStatusCheckedIn,
	CheckoutStatusOverdue,
}

// String implements fmt.Stringer.
func (s CheckoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStatus.
func (s CheckoutStatus) IsValid() bool {
	for _, candidate := range validCheckoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCheckoutStatus converts raw input into a CheckoutStatus.
func ParseCheckoutStatus(value string) (CheckoutStatus, error) {
	for _, candidate := range validCheckoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout status %q", value)
}

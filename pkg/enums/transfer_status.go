package enums

import "fmt"

// TransferStatus tracks a relocation request.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusRejected  TransferStatus = "rejected"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusCancelled TransferStatus = "cancelled"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusApproved,
	TransferStatusRejected,
	TransferStatusCompleted,
	TransferStatusCancelled,
}

// String implements fmt.Stringer.
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferStatus.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TransferStatuses returns every status in declaration order.
func TransferStatuses() []TransferStatus {
	out := make([]TransferStatus, len(validTransferStatuses))
	copy(out, validTransferStatuses)
	return out
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}

package enums

import "fmt"

// IssueType is the terminal problem reported against a checkout.
type IssueType string

const (
	IssueTypeLost    IssueType = "lost"
	IssueTypeStolen  IssueType = "stolen"
	IssueTypeDamaged IssueType = "damaged"
)

var validIssueTypes = []IssueType{
	IssueTypeLost,
	IssueTypeStolen,
	IssueTypeDamaged,
}

// String implements fmt.Stringer.
func (i IssueType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IssueType.
func (i IssueType) IsValid() bool {
	for _, candidate := range validIssueTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// AssetStatus maps the issue onto the status the asset is forced into.
func (i IssueType) AssetStatus() (AssetStatus, bool) {
	switch i {
	case IssueTypeLost:
		return AssetStatusLost, true
	case IssueTypeStolen:
		return AssetStatusStolen, true
	case IssueTypeDamaged:
		return AssetStatusRepair, true
	default:
		return "", false
	}
}

// ParseIssueType converts raw input into an IssueType.
func ParseIssueType(value string) (IssueType, error) {
	for _, candidate := range validIssueTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue type %q", value)
}

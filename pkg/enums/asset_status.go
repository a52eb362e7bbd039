package enums

import "fmt"

// AssetStatus is the single authoritative availability state of an asset.
type AssetStatus string

const (
	AssetStatusAvailable   AssetStatus = "available"
	AssetStatusInUse       AssetStatus = "in_use"
	AssetStatusMaintenance AssetStatus = "maintenance"
	AssetStatusRepair      AssetStatus = "repair"
	AssetStatusRetired     AssetStatus = "retired"
	AssetStatusDisposed    AssetStatus = "disposed"
	AssetStatusLost        AssetStatus = "lost"
	AssetStatusStolen      AssetStatus = "stolen"
)

var validAssetStatuses = []AssetStatus{
	AssetStatusAvailable,
	AssetStatusInUse,
	AssetStatusMaintenance,
	AssetStatusRepair,
	AssetStatusRetired,
	AssetStatusDisposed,
	AssetStatusLost,
	AssetStatusStolen,
}

// String implements fmt.Stringer.
func (s AssetStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AssetStatus.
func (s AssetStatus) IsValid() bool {
	for _, candidate := range validAssetStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// AssetStatuses returns every status in declaration order.
func AssetStatuses() []AssetStatus {
	out := make([]AssetStatus, len(validAssetStatuses))
	copy(out, validAssetStatuses)
	return out
}

// ParseAssetStatus converts raw input into an AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	for _, candidate := range validAssetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset status %q", value)
}

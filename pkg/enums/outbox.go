package enums

import "fmt"

// OutboxAggregateType identifies the record an outbox event is keyed on.
type OutboxAggregateType string

const (
	AggregateAsset       OutboxAggregateType = "asset"
	AggregateCheckout    OutboxAggregateType = "asset_checkout"
	AggregateMaintenance OutboxAggregateType = "asset_maintenance"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateAsset,
	AggregateCheckout,
	AggregateMaintenance,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType identifies the payload schema of an outbox row.
type OutboxEventType string

const (
	EventAssetLifecycleChanged OutboxEventType = "asset_lifecycle_changed"
	EventCheckoutOverdue       OutboxEventType = "checkout_overdue"
	EventMaintenanceDue        OutboxEventType = "maintenance_due"
)

var validOutboxEventTypes = []OutboxEventType{
	EventAssetLifecycleChanged,
	EventCheckoutOverdue,
	EventMaintenanceDue,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

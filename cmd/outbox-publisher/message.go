package main

import (
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox/registry"
)

// messageFor wraps the stored envelope. Attributes carry the row identity
// plus the payload fields subscribers filter on, so a notification consumer
// can select overdue checkouts or urgent maintenance without decoding data.
func messageFor(event models.OutboxEvent, resolved *registry.ResolvedEvent) *gcppubsub.Message {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for key, value := range payloadAttributes(resolved.Payload) {
		attrs[key] = value
	}
	return &gcppubsub.Message{Data: event.Payload, Attributes: attrs}
}

func payloadAttributes(payload any) map[string]string {
	attrs := map[string]string{}
	switch p := payload.(type) {
	case *payloads.AssetLifecycleChangedEvent:
		putID(attrs, "asset_id", p.AssetID)
		putID(attrs, "subject_id", p.SubjectID)
		attrs["action"] = string(p.Action)
		attrs["subject_type"] = string(p.SubjectType)
		attrs["status_after"] = string(p.StatusAfter)
		if p.StatusBefore != p.StatusAfter {
			attrs["status_before"] = string(p.StatusBefore)
		}
	case *payloads.CheckoutOverdueEvent:
		putID(attrs, "asset_id", p.AssetID)
		putID(attrs, "checkout_id", p.CheckoutID)
		putID(attrs, "user_id", p.UserID)
		attrs["days_overdue"] = strconv.Itoa(p.DaysOverdue)
	case *payloads.MaintenanceDueEvent:
		putID(attrs, "asset_id", p.AssetID)
		putID(attrs, "maintenance_id", p.MaintenanceID)
		attrs["maintenance_type"] = string(p.Type)
		attrs["priority"] = string(p.Priority)
		attrs["overdue"] = strconv.FormatBool(p.Overdue)
		if !p.ScheduledAt.IsZero() {
			attrs["scheduled_at"] = p.ScheduledAt.UTC().Format(time.RFC3339)
		}
	}
	return attrs
}

func assetOf(payload any) uuid.UUID {
	switch p := payload.(type) {
	case *payloads.AssetLifecycleChangedEvent:
		return p.AssetID
	case *payloads.CheckoutOverdueEvent:
		return p.AssetID
	case *payloads.MaintenanceDueEvent:
		return p.AssetID
	}
	return uuid.Nil
}

func putID(attrs map[string]string, key string, id uuid.UUID) {
	if id != uuid.Nil {
		attrs[key] = id.String()
	}
}

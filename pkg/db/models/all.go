package models

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Asset{},
		&AssetAssignment{},
		&AssetCheckout{},
		&AssetTransfer{},
		&AssetMaintenance{},
		&AuditLog{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}

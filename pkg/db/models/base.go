package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a client-side UUID so SQLite and Postgres rows are keyed identically.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (a *Asset) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

func (a *AssetAssignment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

func (c *AssetCheckout) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (t *AssetTransfer) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

func (m *AssetMaintenance) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

func (e *OutboxEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (d *OutboxDLQ) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// AuditLog is an immutable fact describing one state-changing operation.
// Rows are inserted once and never updated or deleted.
type AuditLog struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID             `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Action      enums.AuditAction      `gorm:"column:action;type:varchar(64);not null;index" json:"action"`
	ModelType   enums.AuditSubjectType `gorm:"column:model_type;type:varchar(64);not null;index:idx_audit_logs_subject" json:"model_type"`
	ModelID     uuid.UUID              `gorm:"column:model_id;type:uuid;not null;index:idx_audit_logs_subject" json:"model_id"`
	Description string                 `gorm:"column:description;type:text;not null" json:"description"`
	OldValues   json.RawMessage        `gorm:"column:old_values;type:jsonb" json:"old_values,omitempty"`
	NewValues   json.RawMessage        `gorm:"column:new_values;type:jsonb" json:"new_values,omitempty"`
	IPAddress   *string                `gorm:"column:ip_address" json:"ip_address"`
	UserAgent   *string                `gorm:"column:user_agent;type:text" json:"user_agent"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName pins the table to the historical name.
func (AuditLog) TableName() string {
	return "audit_logs"
}

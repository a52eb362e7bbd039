package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// Actor is the identity performing an operation. A nil UserID is a system action.
type Actor struct {
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
}

// SystemActor returns the actor used by background jobs.
func SystemActor() Actor {
	return Actor{}
}

// IsSystem reports whether no user is attached.
func (a Actor) IsSystem() bool {
	return a.UserID == nil || *a.UserID == uuid.Nil
}

// Is reports whether the actor is the given user.
func (a Actor) Is(userID *uuid.UUID) bool {
	if a.IsSystem() || userID == nil {
		return false
	}
	return *a.UserID == *userID
}

// Entry describes one audited operation. Old and New are snapshotted when
// Record is called; later mutations of the values do not leak into the row.
type Entry struct {
	Actor       Actor
	Action      enums.AuditAction
	SubjectType enums.AuditSubjectType
	SubjectID   uuid.UUID
	Description string
	Old         any
	New         any
}

type auditWriter interface {
	InsertTx(tx *gorm.DB, entry *models.AuditLog) error
}

// Recorder appends audit entries inside the caller's transaction.
type Recorder struct {
	repo auditWriter
}

// NewRecorder builds a recorder over the append-only repository.
func NewRecorder(repo auditWriter) (*Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &Recorder{repo: repo}, nil
}

// Record inserts the entry. An error must abort the surrounding transaction.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !entry.Action.IsValid() {
		return fmt.Errorf("invalid audit action %q", entry.Action)
	}
	if !entry.SubjectType.IsValid() {
		return fmt.Errorf("invalid audit subject %q", entry.SubjectType)
	}
	if entry.SubjectID == uuid.Nil {
		return errors.New("audit subject id required")
	}

	oldValues, err := snapshot(entry.Old)
	if err != nil {
		return fmt.Errorf("snapshot old values: %w", err)
	}
	newValues, err := snapshot(entry.New)
	if err != nil {
		return fmt.Errorf("snapshot new values: %w", err)
	}

	row := &models.AuditLog{
		Action:      entry.Action,
		ModelType:   entry.SubjectType,
		ModelID:     entry.SubjectID,
		Description: entry.Description,
		OldValues:   oldValues,
		NewValues:   newValues,
		IPAddress:   optionalString(entry.Actor.IPAddress),
		UserAgent:   optionalString(entry.Actor.UserAgent),
	}
	if !entry.Actor.IsSystem() {
		id := *entry.Actor.UserID
		row.UserID = &id
	}
	return r.repo.InsertTx(tx.WithContext(ctx), row)
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

package outbox

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

const maxDeadLetterMessage = 1024

// DeadLetterStore parks outbox events the publisher gave up on, keeping
// the payload so an operator can replay the lifecycle change by hand.
type DeadLetterStore struct {
	now func() time.Time
}

func NewDeadLetterStore() *DeadLetterStore {
	return &DeadLetterStore{now: time.Now}
}

// ParkTx copies event into outbox_dlq inside tx. An event is parked at
// most once; a repeat returns false without writing.
func (s *DeadLetterStore) ParkTx(tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) (bool, error) {
	if tx == nil {
		return false, errors.New("transaction required")
	}
	if !reason.IsValid() {
		return false, fmt.Errorf("unknown dead letter reason %q", reason)
	}

	var existing int64
	if err := tx.Model(&models.OutboxDLQ{}).Where("event_id = ?", event.ID).Count(&existing).Error; err != nil {
		return false, fmt.Errorf("check dead letter %s: %w", event.ID, err)
	}
	if existing > 0 {
		return false, nil
	}

	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		AttemptCount:  event.AttemptCount,
		FailedAt:      s.now().UTC(),
	}
	if cause != nil {
		msg := clipMessage(cause.Error())
		entry.ErrorMessage = &msg
	}
	if err := tx.Create(&entry).Error; err != nil {
		return false, fmt.Errorf("insert dead letter %s: %w", event.ID, err)
	}
	return true, nil
}

// clipMessage caps driver errors at maxDeadLetterMessage bytes without
// splitting a multi-byte rune.
func clipMessage(msg string) string {
	if len(msg) <= maxDeadLetterMessage {
		return msg
	}
	cut := maxDeadLetterMessage
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

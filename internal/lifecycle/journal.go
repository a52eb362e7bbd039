package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	"github.com/angelmondragon/assettrack-backend/pkg/metrics"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox/payloads"
)

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Clock returns the current instant. Workflows take one so tests can pin time.
type Clock func() time.Time

// UTC wraps a clock so every reading is normalized to UTC.
func (c Clock) UTC() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Event is one committed workflow operation.
type Event struct {
	Actor        audit.Actor
	Action       enums.AuditAction
	SubjectType  enums.AuditSubjectType
	SubjectID    uuid.UUID
	AssetID      uuid.UUID
	StatusBefore enums.AssetStatus
	StatusAfter  enums.AssetStatus
	Description  string
	Old          any
	New          any
}

// Journal writes the audit entry and lifecycle event of a workflow operation
// inside its transaction, and counts the outcome once the transaction ends.
type Journal struct {
	audit   auditRecorder
	outbox  outboxEmitter
	metrics *metrics.LifecycleMetrics
	logg    *logger.Logger
}

type JournalParams struct {
	Audit   auditRecorder
	Outbox  outboxEmitter
	Metrics *metrics.LifecycleMetrics
	Logger  *logger.Logger
}

func NewJournal(params JournalParams) (*Journal, error) {
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Journal{
		audit:   params.Audit,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Write appends the audit entry and queues the lifecycle event. Any error
// must abort tx.
func (j *Journal) Write(ctx context.Context, tx *gorm.DB, ev Event) error {
	if err := j.audit.Record(ctx, tx, audit.Entry{
		Actor:       ev.Actor,
		Action:      ev.Action,
		SubjectType: ev.SubjectType,
		SubjectID:   ev.SubjectID,
		Description: ev.Description,
		Old:         ev.Old,
		New:         ev.New,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record audit entry")
	}

	if err := j.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventAssetLifecycleChanged,
		AggregateType: enums.AggregateAsset,
		AggregateID:   ev.AssetID,
		Actor:         actorRef(ev.Actor),
		Version:       1,
		Data: payloads.AssetLifecycleChangedEvent{
			AssetID:      ev.AssetID,
			Action:       ev.Action,
			SubjectType:  ev.SubjectType,
			SubjectID:    ev.SubjectID,
			StatusBefore: ev.StatusBefore,
			StatusAfter:  ev.StatusAfter,
			UserID:       ev.Actor.UserID,
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue lifecycle event")
	}
	return nil
}

// Committed records metrics and a log line for an operation whose transaction committed.
func (j *Journal) Committed(ctx context.Context, ev Event) {
	if ev.StatusBefore != ev.StatusAfter {
		j.metrics.ObserveTransition(ev.Action.String(), ev.StatusBefore.String(), ev.StatusAfter.String())
	}
	if j.logg == nil {
		return
	}
	logCtx := j.logg.WithAsset(ctx, ev.AssetID)
	logCtx = j.logg.WithSubject(logCtx, ev.SubjectType.String(), ev.SubjectID)
	logCtx = j.logg.WithTransition(logCtx, ev.StatusBefore.String(), ev.StatusAfter.String())
	logCtx = j.logg.WithField(logCtx, "action", ev.Action)
	j.logg.Info(logCtx, "asset lifecycle "+ev.Action.String())
}

// Rejected counts a failed operation by its typed error code and passes err through.
func (j *Journal) Rejected(operation string, err error) error {
	if err == nil {
		return nil
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	j.metrics.IncRejection(operation, string(code))
	return err
}

func actorRef(actor audit.Actor) *outbox.ActorRef {
	if actor.IsSystem() {
		return &outbox.ActorRef{Role: "system"}
	}
	id := *actor.UserID
	return &outbox.ActorRef{UserID: &id, Role: "user"}
}

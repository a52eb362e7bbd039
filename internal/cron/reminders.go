package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (bool, error)
}

var systemActor = &outbox.ActorRef{Role: "system"}

// emitAll queues each event in its own transaction so one bad row does not
// hold back the rest. It returns how many rows were actually written.
func emitAll(ctx context.Context, db txRunner, emitter eventEmitter, events []outbox.DomainEvent) (int, error) {
	var (
		emitted int
		errs    error
	)
	for _, event := range events {
		var written bool
		err := db.WithTx(ctx, func(tx *gorm.DB) error {
			ok, err := emitter.EmitIfNotExists(ctx, tx, event)
			written = ok
			return err
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %w", event.EventType, event.AggregateID, err))
			continue
		}
		if written {
			emitted++
		}
	}
	return emitted, errs
}

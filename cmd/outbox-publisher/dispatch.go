package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox/registry"
)

// processBatch reports whether any rows were fetched.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.policy.batchSize, s.policy.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		processed = len(events) > 0
		for _, event := range events {
			if err := s.dispatch(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

// dispatch publishes one row and records the outcome on it. A publish
// failure is not returned; only a failed bookkeeping write aborts the batch.
func (s *Service) dispatch(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return s.deadLetter(s.eventContext(ctx, event, nil), tx, event, enums.OutboxDLQReasonNonRetryable, err)
	}
	logCtx := s.eventContext(ctx, event, resolved)

	sendErr := s.send(ctx, event, resolved)
	attempt := event.AttemptCount + 1
	switch {
	case sendErr == nil:
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(string(event.EventType))
		s.logg.Info(logCtx, "outbox event published")
		return nil
	case isNonRetryable(sendErr):
		return s.deadLetter(logCtx, tx, event, enums.OutboxDLQReasonNonRetryable, sendErr)
	case attempt >= s.policy.maxAttempts:
		return s.deadLetter(logCtx, tx, event, enums.OutboxDLQReasonMaxAttempts, fmt.Errorf("max publish attempts reached: %w", sendErr))
	}

	retryCtx := s.logg.WithField(logCtx, "attempt_count", attempt)
	s.logg.Warn(s.logg.WithError(retryCtx, sendErr), "outbox publish failed")
	s.metrics.IncFailed(string(event.EventType))
	if err := s.repo.MarkFailedTx(tx, event.ID, sendErr); err != nil {
		return fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return nil
}

// deadLetter copies the row into the DLQ and closes it so it is never
// fetched again.
func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	logCtx := s.logg.WithField(ctx, "error_reason", reason)
	s.logg.Warn(s.logg.WithError(logCtx, cause), "outbox event will not be retried")

	parked, err := s.dlq.ParkTx(tx, event, reason, cause)
	if err != nil {
		return err
	}
	if !parked {
		s.logg.Warn(logCtx, "outbox event already dead-lettered")
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	s.metrics.IncDLQ(string(event.EventType), string(reason))
	return nil
}

func (s *Service) send(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.policy.publishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, messageFor(event, resolved))
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

// eventContext tags log lines with the row identity and, once decoded, the
// topic and the asset the event is about.
func (s *Service) eventContext(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) context.Context {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	if resolved == nil {
		return s.logg.WithFields(ctx, fields)
	}
	fields["topic"] = resolved.Descriptor.Topic
	if resolved.Envelope.EventID != "" {
		fields["event_id"] = resolved.Envelope.EventID
	}
	return s.logg.WithAsset(s.logg.WithFields(ctx, fields), assetOf(resolved.Payload))
}

package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/dbtest"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
)

func TestOutboxRetentionPurgesOnlyOldPublishedRows(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	now := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	published := now.Add(-40 * 24 * time.Hour)

	insert := func(created time.Time, publishedAt *time.Time) uuid.UUID {
		row := models.OutboxEvent{
			EventType:     enums.EventAssetLifecycleChanged,
			AggregateType: enums.AggregateAsset,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{}`),
			CreatedAt:     created,
			PublishedAt:   publishedAt,
		}
		require.NoError(t, conn.Create(&row).Error)
		return row.ID
	}
	old := insert(now.Add(-45*24*time.Hour), &published)
	oldPending := insert(now.Add(-45*24*time.Hour), nil)
	recent := insert(now.Add(-24*time.Hour), &published)

	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		DB:         client,
		Repository: outbox.NewRepository(conn),
	})
	require.NoError(t, err)
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	var remaining []uuid.UUID
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Pluck("id", &remaining).Error)
	assert.ElementsMatch(t, []uuid.UUID{oldPending, recent}, remaining)
	assert.NotContains(t, remaining, old)
}

type failingPurger struct{}

func (failingPurger) DeleteOlderThan(*gorm.DB, time.Time) (int64, error) {
	return 0, errors.New("boom")
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func TestOutboxRetentionPropagatesError(t *testing.T) {
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		DB:         passthroughTx{},
		Repository: failingPurger{},
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

// Package lifecycletest wires the workflow collaborators over an in-memory
// SQLite database for service tests.
package lifecycletest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/internal/lifecycle"
	"github.com/angelmondragon/assettrack-backend/pkg/db"
	"github.com/angelmondragon/assettrack-backend/pkg/db/dbtest"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/outbox"
)

// Harness holds a migrated database and the shared lifecycle collaborators.
type Harness struct {
	Client  *db.Client
	DB      *gorm.DB
	Journal *lifecycle.Journal
	Guard   *lifecycle.Guard
	States  *assets.StateStore
	Now     time.Time
}

func New(t testing.TB) *Harness {
	t.Helper()
	client := dbtest.Open(t)
	recorder, err := audit.NewRecorder(audit.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("audit recorder: %v", err)
	}
	journal, err := lifecycle.NewJournal(lifecycle.JournalParams{
		Audit:  recorder,
		Outbox: outbox.NewService(outbox.NewRepository(client.DB()), nil),
	})
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	return &Harness{
		Client:  client,
		DB:      client.DB(),
		Journal: journal,
		Guard:   lifecycle.NewGuard(),
		States:  assets.NewStateStore(client.DB()),
		Now:     time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
	}
}

// Clock returns a clock pinned to h.Now. Advance h.Now to move it.
func (h *Harness) Clock() lifecycle.Clock {
	return func() time.Time { return h.Now }
}

// Actor returns a fresh user actor.
func Actor() audit.Actor {
	id := uuid.New()
	return audit.Actor{UserID: &id, IPAddress: "10.0.0.1", UserAgent: "lifecycletest"}
}

// SeedAsset inserts an available asset in good condition, then applies mutate.
func (h *Harness) SeedAsset(t testing.TB, mutate func(*models.Asset)) *models.Asset {
	t.Helper()
	asset := &models.Asset{
		AssetTag:  "AT-" + uuid.NewString()[:8],
		Name:      "Test asset",
		Status:    enums.AssetStatusAvailable,
		Condition: enums.AssetConditionGood,
	}
	if mutate != nil {
		mutate(asset)
	}
	if err := h.DB.Create(asset).Error; err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	return asset
}

func (h *Harness) Asset(t testing.TB, id uuid.UUID) *models.Asset {
	t.Helper()
	var asset models.Asset
	if err := h.DB.First(&asset, "id = ?", id).Error; err != nil {
		t.Fatalf("reload asset: %v", err)
	}
	return &asset
}

// AuditCount counts audit rows for the action.
func (h *Harness) AuditCount(t testing.TB, action enums.AuditAction) int64 {
	t.Helper()
	var count int64
	if err := h.DB.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error; err != nil {
		t.Fatalf("count audit: %v", err)
	}
	return count
}

// AuditFor returns the audit rows for one subject, oldest first.
func (h *Harness) AuditFor(t testing.TB, subjectID uuid.UUID) []models.AuditLog {
	t.Helper()
	var rows []models.AuditLog
	if err := h.DB.Where("model_id = ?", subjectID).Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load audit: %v", err)
	}
	return rows
}

// LifecycleEvents counts queued lifecycle events for the asset.
func (h *Harness) LifecycleEvents(t testing.TB, assetID uuid.UUID) int64 {
	t.Helper()
	var count int64
	err := h.DB.Model(&models.OutboxEvent{}).
		Where("event_type = ? AND aggregate_id = ?", enums.EventAssetLifecycleChanged, assetID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	return count
}

// ErrJournal is returned by the journal built with FailingJournal.
var ErrJournal = errors.New("audit store unavailable")

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, *gorm.DB, audit.Entry) error {
	return ErrJournal
}

// FailingJournal returns a journal whose audit write always fails, so the
// surrounding workflow transaction must roll back.
func (h *Harness) FailingJournal(t testing.TB) *lifecycle.Journal {
	t.Helper()
	journal, err := lifecycle.NewJournal(lifecycle.JournalParams{
		Audit:  failingRecorder{},
		Outbox: outbox.NewService(outbox.NewRepository(h.DB), nil),
	})
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	return journal
}

// AfterNextQuery runs fn once, on the transaction of the next query against
// table. Tests use it to commit a competing change between two reads.
func (h *Harness) AfterNextQuery(t testing.TB, table string, fn func(tx *gorm.DB) error) {
	t.Helper()
	fired := false
	name := "lifecycletest:after_" + table
	err := h.DB.Callback().Query().After("gorm:query").Register(name, func(tx *gorm.DB) {
		if fired || tx.Error != nil || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := fn(tx.Session(&gorm.Session{NewDB: true})); err != nil {
			t.Errorf("after query on %s: %v", table, err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	t.Cleanup(func() { _ = h.DB.Callback().Query().Remove(name) })
}

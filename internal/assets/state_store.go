package assets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

// Change lists the non-status asset columns a transition writes. Nil pointers
// leave the column untouched; the Clear flags null it.
type Change struct {
	AssignedTo           *uuid.UUID
	AssignedAt           *time.Time
	ClearHolder          bool
	LocationID           *uuid.UUID
	DepartmentID         *uuid.UUID
	Condition            *enums.AssetCondition
	NextMaintenanceDate  *time.Time
	ClearNextMaintenance bool
}

// Custody is who holds the asset and where it sits.
type Custody struct {
	HolderID     *uuid.UUID `json:"holder_id"`
	LocationID   *uuid.UUID `json:"location_id"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

// StateStore is the only writer of assets.status.
type StateStore struct {
	db *gorm.DB
}

// NewStateStore binds the store to a connection; use WithTx inside workflows.
func NewStateStore(db *gorm.DB) *StateStore {
	return &StateStore{db: db}
}

func (s *StateStore) WithTx(tx *gorm.DB) *StateStore {
	if tx == nil {
		return s
	}
	return &StateStore{db: tx}
}

// LoadForUpdate re-reads the asset holding a row lock until the transaction ends.
func (s *StateStore) LoadForUpdate(ctx context.Context, assetID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", assetID).
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// SetStatus writes status together with the change in one UPDATE and mirrors
// the values onto asset.
func (s *StateStore) SetStatus(ctx context.Context, asset *models.Asset, status enums.AssetStatus, change Change) error {
	updates := change.columns()
	updates["status"] = status
	if err := s.update(ctx, asset.ID, updates); err != nil {
		return err
	}
	asset.Status = status
	change.mirror(asset)
	return nil
}

// Apply writes the non-status part of a change.
func (s *StateStore) Apply(ctx context.Context, asset *models.Asset, change Change) error {
	updates := change.columns()
	if len(updates) == 0 {
		return nil
	}
	if err := s.update(ctx, asset.ID, updates); err != nil {
		return err
	}
	change.mirror(asset)
	return nil
}

// IsAvailable reports whether the asset currently has status available.
func (s *StateStore) IsAvailable(ctx context.Context, assetID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Asset{}).
		Where("id = ? AND status = ?", assetID, enums.AssetStatusAvailable).
		Count(&count).Error
	return count > 0, err
}

// CurrentCustody returns holder, location and department for the asset.
func (s *StateStore) CurrentCustody(ctx context.Context, assetID uuid.UUID) (Custody, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).
		Select("id", "assigned_to", "location_id", "department_id").
		Where("id = ?", assetID).
		First(&asset).Error
	if err != nil {
		return Custody{}, err
	}
	return CustodyOf(&asset), nil
}

// CustodyOf reads custody from an already loaded asset.
func CustodyOf(asset *models.Asset) Custody {
	return Custody{
		HolderID:     asset.AssignedTo,
		LocationID:   asset.LocationID,
		DepartmentID: asset.DepartmentID,
	}
}

func (s *StateStore) update(ctx context.Context, assetID uuid.UUID, updates map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.Asset{}).Where("id = ?", assetID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c Change) columns() map[string]any {
	updates := map[string]any{}
	if c.ClearHolder {
		updates["assigned_to"] = nil
		updates["assigned_at"] = nil
	} else {
		if c.AssignedTo != nil {
			updates["assigned_to"] = *c.AssignedTo
		}
		if c.AssignedAt != nil {
			updates["assigned_at"] = *c.AssignedAt
		}
	}
	if c.LocationID != nil {
		updates["location_id"] = *c.LocationID
	}
	if c.DepartmentID != nil {
		updates["department_id"] = *c.DepartmentID
	}
	if c.Condition != nil {
		updates["condition"] = *c.Condition
	}
	if c.ClearNextMaintenance {
		updates["next_maintenance_date"] = nil
	} else if c.NextMaintenanceDate != nil {
		updates["next_maintenance_date"] = *c.NextMaintenanceDate
	}
	return updates
}

func (c Change) mirror(asset *models.Asset) {
	if c.ClearHolder {
		asset.AssignedTo = nil
		asset.AssignedAt = nil
	} else {
		if c.AssignedTo != nil {
			v := *c.AssignedTo
			asset.AssignedTo = &v
		}
		if c.AssignedAt != nil {
			v := *c.AssignedAt
			asset.AssignedAt = &v
		}
	}
	if c.LocationID != nil {
		v := *c.LocationID
		asset.LocationID = &v
	}
	if c.DepartmentID != nil {
		v := *c.DepartmentID
		asset.DepartmentID = &v
	}
	if c.Condition != nil {
		asset.Condition = *c.Condition
	}
	if c.ClearNextMaintenance {
		asset.NextMaintenanceDate = nil
	} else if c.NextMaintenanceDate != nil {
		v := *c.NextMaintenanceDate
		asset.NextMaintenanceDate = &v
	}
}

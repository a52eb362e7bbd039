package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
)

// Custody is the set of open workflow records holding an asset.
type Custody struct {
	Assignment *models.AssetAssignment
	Checkout   *models.AssetCheckout
}

// Held reports whether any workflow currently holds the asset.
func (c Custody) Held() bool {
	return c.Assignment != nil || c.Checkout != nil
}

// Guard answers cross-workflow questions every workflow must ask before
// changing who holds an asset.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// ActiveCustody loads the active assignment and checked_out checkout for the asset.
func (g *Guard) ActiveCustody(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (Custody, error) {
	var custody Custody

	var assignment models.AssetAssignment
	err := tx.WithContext(ctx).
		Where("asset_id = ? AND status = ?", assetID, enums.AssignmentStatusActive).
		Order("assigned_at DESC").
		First(&assignment).Error
	switch {
	case err == nil:
		custody.Assignment = &assignment
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Custody{}, err
	}

	var checkout models.AssetCheckout
	err = tx.WithContext(ctx).
		Where("asset_id = ? AND status = ?", assetID, enums.CheckoutStatusCheckedOut).
		Order("checked_out_at DESC").
		First(&checkout).Error
	switch {
	case err == nil:
		custody.Checkout = &checkout
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Custody{}, err
	}
	return custody, nil
}

// SupersedeAssignment closes the asset's active assignment as transferred
// when custody moves to another user outside the assignment workflow. It
// returns the closed record, or nil when none was active.
func (g *Guard) SupersedeAssignment(ctx context.Context, tx *gorm.DB, assetID uuid.UUID, at time.Time) (*models.AssetAssignment, error) {
	custody, err := g.ActiveCustody(ctx, tx, assetID)
	if err != nil {
		return nil, err
	}
	if custody.Assignment == nil {
		return nil, nil
	}
	closed := custody.Assignment
	closed.Status = enums.AssignmentStatusTransferred
	closed.ReturnedAt = &at
	if err := tx.WithContext(ctx).Save(closed).Error; err != nil {
		return nil, err
	}
	return closed, nil
}

// RejectCheckout fails with Conflict when the asset is out on a checkout.
func (c Custody) RejectCheckout() error {
	if c.Checkout != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "asset is currently checked out").
			WithDetails(map[string]any{"checkout_id": c.Checkout.ID})
	}
	return nil
}

// RejectAssignment fails with Conflict when the asset has an active assignment.
func (c Custody) RejectAssignment() error {
	if c.Assignment != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "asset is currently assigned").
			WithDetails(map[string]any{"assignment_id": c.Assignment.ID})
	}
	return nil
}

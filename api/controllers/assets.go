package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assettrack-backend/api/middleware"
	"github.com/angelmondragon/assettrack-backend/api/responses"
	"github.com/angelmondragon/assettrack-backend/api/validators"
	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
)

type registerAssetRequest struct {
	AssetTag            string               `json:"asset_tag" validate:"required,max=64"`
	Name                string               `json:"name" validate:"required,max=255"`
	Description         *string              `json:"description,omitempty"`
	CategoryID          *uuid.UUID           `json:"category_id,omitempty"`
	Brand               *string              `json:"brand,omitempty" validate:"omitempty,max=128"`
	Model               *string              `json:"model,omitempty" validate:"omitempty,max=128"`
	SerialNumber        *string              `json:"serial_number,omitempty" validate:"omitempty,max=128"`
	PurchaseDate        *time.Time           `json:"purchase_date,omitempty"`
	PurchaseCost        *decimal.Decimal     `json:"purchase_cost,omitempty"`
	LocationID          *uuid.UUID           `json:"location_id,omitempty"`
	DepartmentID        *uuid.UUID           `json:"department_id,omitempty"`
	Condition           enums.AssetCondition `json:"condition,omitempty"`
	IsCritical          bool                 `json:"is_critical"`
	NextMaintenanceDate *time.Time           `json:"next_maintenance_date,omitempty"`
	Notes               *string              `json:"notes,omitempty"`
}

func (r registerAssetRequest) toInput() assets.RegisterInput {
	return assets.RegisterInput{
		AssetTag:            validators.SanitizeString(r.AssetTag, 64),
		Name:                validators.SanitizeString(r.Name, 255),
		Description:         r.Description,
		CategoryID:          r.CategoryID,
		Brand:               r.Brand,
		Model:               r.Model,
		SerialNumber:        r.SerialNumber,
		PurchaseDate:        r.PurchaseDate,
		PurchaseCost:        r.PurchaseCost,
		LocationID:          r.LocationID,
		DepartmentID:        r.DepartmentID,
		Condition:           r.Condition,
		IsCritical:          r.IsCritical,
		NextMaintenanceDate: r.NextMaintenanceDate,
		Notes:               r.Notes,
	}
}

// AssetRegister creates a new asset record.
func AssetRegister(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "asset")
			return
		}
		var payload registerAssetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		asset, err := svc.Register(r.Context(), middleware.ActorFromRequest(r), payload.toInput())
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteCreated(w, asset)
	}
}

func AssetGet(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "asset")
			return
		}
		id, err := validators.ParseURLUUID(r, "assetId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		asset, err := svc.Get(r.Context(), id)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// AssetList supports status, condition, placement, holder, and free-text filters.
func AssetList(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "asset")
			return
		}
		params, err := parseAssetListParams(r)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		result, err := svc.List(r.Context(), params)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseAssetListParams(r *http.Request) (assets.ListParams, error) {
	var (
		params assets.ListParams
		err    error
	)
	if params.Status, err = validators.ParseQueryEnum[enums.AssetStatus](r, "status"); err != nil {
		return params, err
	}
	if params.Condition, err = validators.ParseQueryEnum[enums.AssetCondition](r, "condition"); err != nil {
		return params, err
	}
	if params.CategoryID, err = validators.ParseQueryUUID(r, "category_id"); err != nil {
		return params, err
	}
	if params.LocationID, err = validators.ParseQueryUUID(r, "location_id"); err != nil {
		return params, err
	}
	if params.DepartmentID, err = validators.ParseQueryUUID(r, "department_id"); err != nil {
		return params, err
	}
	if params.AssignedTo, err = validators.ParseQueryUUID(r, "assigned_to"); err != nil {
		return params, err
	}
	params.Search = validators.SanitizeString(r.URL.Query().Get("search"), 128)
	if params.Params, err = validators.ParsePage(r); err != nil {
		return params, err
	}
	return params, nil
}

func AssetHistory(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "asset")
			return
		}
		id, err := validators.ParseURLUUID(r, "assetId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		history, err := svc.History(r.Context(), id)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

func AssetStatistics(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "asset")
			return
		}
		stats, err := svc.Statistics(r.Context())
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AssetAlerts returns the dashboard alert feed. days=0 uses the service default.
func AssetAlerts(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "asset")
			return
		}
		days, err := validators.ParseQueryInt(r, "days", 0, 0, 365)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		alerts, err := svc.Alerts(r.Context(), days)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, alerts)
	}
}

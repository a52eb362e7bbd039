package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/assettrack-backend/api/middleware"
	"github.com/angelmondragon/assettrack-backend/api/responses"
	"github.com/angelmondragon/assettrack-backend/api/validators"
	"github.com/angelmondragon/assettrack-backend/internal/maintenance"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
)

type scheduleMaintenanceRequest struct {
	AssetID         uuid.UUID                 `json:"asset_id" validate:"required"`
	MaintenanceType enums.MaintenanceType     `json:"maintenance_type" validate:"required"`
	Title           string                    `json:"title" validate:"required,max=255"`
	Description     string                    `json:"description" validate:"required"`
	ScheduledDate   time.Time                 `json:"scheduled_date" validate:"required"`
	Priority        enums.MaintenancePriority `json:"priority,omitempty"`
	Cost            *decimal.Decimal          `json:"cost,omitempty"`
	PerformedBy     *uuid.UUID                `json:"performed_by,omitempty"`
	VendorID        *uuid.UUID                `json:"vendor_id,omitempty"`
	Notes           *string                   `json:"notes,omitempty"`
}

type updateMaintenanceRequest struct {
	Title         *string                    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description   *string                    `json:"description,omitempty" validate:"omitempty,min=1"`
	ScheduledDate *time.Time                 `json:"scheduled_date,omitempty"`
	Priority      *enums.MaintenancePriority `json:"priority,omitempty"`
	Cost          *decimal.Decimal           `json:"cost,omitempty"`
	PerformedBy   *uuid.UUID                 `json:"performed_by,omitempty"`
	VendorID      *uuid.UUID                 `json:"vendor_id,omitempty"`
	PartsReplaced *string                    `json:"parts_replaced,omitempty"`
	DowntimeHours *int                       `json:"downtime_hours,omitempty" validate:"omitempty,gte=0"`
	Notes         *string                    `json:"notes,omitempty"`
}

type startMaintenanceRequest struct {
	PerformedBy *uuid.UUID `json:"performed_by,omitempty"`
}

type completeMaintenanceRequest struct {
	CompletedDate  *time.Time           `json:"completed_date,omitempty"`
	Cost           *decimal.Decimal     `json:"cost,omitempty"`
	PartsReplaced  *string              `json:"parts_replaced,omitempty"`
	DowntimeHours  *int                 `json:"downtime_hours,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
	AssetCondition enums.AssetCondition `json:"asset_condition" validate:"required"`
}

type cancelMaintenanceRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func MaintenanceSchedule(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		var payload scheduleMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Schedule(r.Context(), middleware.ActorFromRequest(r), maintenance.ScheduleInput{
			AssetID:       payload.AssetID,
			Type:          payload.MaintenanceType,
			Title:         validators.SanitizeString(payload.Title, 255),
			Description:   payload.Description,
			ScheduledDate: payload.ScheduledDate,
			Priority:      payload.Priority,
			Cost:          payload.Cost,
			PerformedBy:   payload.PerformedBy,
			VendorID:      payload.VendorID,
			Notes:         payload.Notes,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteCreated(w, record)
	}
}

// MaintenanceUpdate edits an open record. Notes are appended, not replaced.
func MaintenanceUpdate(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		id, err := validators.ParseURLUUID(r, "maintenanceId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload updateMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Update(r.Context(), middleware.ActorFromRequest(r), id, maintenance.UpdateInput{
			Title:         payload.Title,
			Description:   payload.Description,
			ScheduledDate: payload.ScheduledDate,
			Priority:      payload.Priority,
			Cost:          payload.Cost,
			PerformedBy:   payload.PerformedBy,
			VendorID:      payload.VendorID,
			PartsReplaced: payload.PartsReplaced,
			DowntimeHours: payload.DowntimeHours,
			Notes:         payload.Notes,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func MaintenanceStart(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		id, err := validators.ParseURLUUID(r, "maintenanceId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload startMaintenanceRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Start(r.Context(), middleware.ActorFromRequest(r), id, payload.PerformedBy)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func MaintenanceComplete(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		id, err := validators.ParseURLUUID(r, "maintenanceId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload completeMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Complete(r.Context(), middleware.ActorFromRequest(r), id, maintenance.CompleteInput{
			CompletedDate:  payload.CompletedDate,
			Cost:           payload.Cost,
			PartsReplaced:  payload.PartsReplaced,
			DowntimeHours:  payload.DowntimeHours,
			Notes:          payload.Notes,
			AssetCondition: payload.AssetCondition,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func MaintenanceCancel(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		id, err := validators.ParseURLUUID(r, "maintenanceId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload cancelMaintenanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Cancel(r.Context(), middleware.ActorFromRequest(r), id, validators.SanitizeString(payload.Reason, 0))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func MaintenanceGet(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		id, err := validators.ParseURLUUID(r, "maintenanceId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Get(r.Context(), id)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func MaintenanceList(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		var (
			params maintenance.ListParams
			err    error
		)
		if params.AssetID, err = validators.ParseQueryUUID(r, "asset_id"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.Status, err = validators.ParseQueryEnum[enums.MaintenanceStatus](r, "status"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.Type, err = validators.ParseQueryEnum[enums.MaintenanceType](r, "maintenance_type"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.Priority, err = validators.ParseQueryEnum[enums.MaintenancePriority](r, "priority"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.Params, err = validators.ParsePage(r); err != nil {
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

func MaintenanceOverdue(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		rows, err := svc.Overdue(r.Context())
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// MaintenanceUpcoming lists scheduled work within ?days= (service default when omitted).
func MaintenanceUpcoming(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
			return
		}
		days, err := validators.ParseQueryInt(r, "days", 0, 0, 365)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		rows, err := svc.Upcoming(r.Context(), days)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func MaintenanceStatistics(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "maintenance")
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

package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/api/middleware"
	"github.com/angelmondragon/assettrack-backend/api/responses"
	"github.com/angelmondragon/assettrack-backend/api/validators"
	"github.com/angelmondragon/assettrack-backend/internal/assignments"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
)

type assignRequest struct {
	AssetID      uuid.UUID  `json:"asset_id" validate:"required"`
	AssignedTo   uuid.UUID  `json:"assigned_to" validate:"required"`
	LocationID   *uuid.UUID `json:"location_id,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type returnRequest struct {
	Condition enums.AssetCondition `json:"condition" validate:"required"`
	Notes     *string              `json:"notes,omitempty"`
}

// AssignmentCreate hands an asset to a holder.
func AssignmentCreate(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "assignment")
			return
		}
		var payload assignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Assign(r.Context(), middleware.ActorFromRequest(r), assignments.AssignInput{
			AssetID:      payload.AssetID,
			AssignedTo:   payload.AssignedTo,
			LocationID:   payload.LocationID,
			DepartmentID: payload.DepartmentID,
			AssignedAt:   payload.AssignedAt,
			Notes:        payload.Notes,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteCreated(w, record)
	}
}

// AssignmentReturn closes an active assignment and frees the asset.
func AssignmentReturn(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "assignment")
			return
		}
		id, err := validators.ParseURLUUID(r, "assignmentId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload returnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Return(r.Context(), middleware.ActorFromRequest(r), id, assignments.ReturnInput{
			Condition: payload.Condition,
			Notes:     payload.Notes,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func AssignmentGet(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "assignment")
			return
		}
		id, err := validators.ParseURLUUID(r, "assignmentId")
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

func AssignmentList(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "assignment")
			return
		}
		var (
			params assignments.ListParams
			err    error
		)
		if params.AssetID, err = validators.ParseQueryUUID(r, "asset_id"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.UserID, err = validators.ParseQueryUUID(r, "user_id"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.Status, err = validators.ParseQueryEnum[enums.AssignmentStatus](r, "status"); err != nil {
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

// AssignmentsForUser lists a holder's active assignments.
func AssignmentsForUser(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "assignment")
			return
		}
		userID, err := validators.ParseURLUUID(r, "userId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		rows, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AssignmentStatistics(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "assignment")
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

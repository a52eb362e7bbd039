package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/api/middleware"
	"github.com/angelmondragon/assettrack-backend/api/responses"
	"github.com/angelmondragon/assettrack-backend/api/validators"
	"github.com/angelmondragon/assettrack-backend/internal/transfers"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
)

type initiateTransferRequest struct {
	AssetID          uuid.UUID  `json:"asset_id" validate:"required"`
	ToUserID         *uuid.UUID `json:"to_user_id,omitempty"`
	ToLocationID     *uuid.UUID `json:"to_location_id,omitempty"`
	ToDepartmentID   *uuid.UUID `json:"to_department_id,omitempty"`
	Reason           string     `json:"reason" validate:"required"`
	Notes            *string    `json:"notes,omitempty"`
	TransferDate     *time.Time `json:"transfer_date,omitempty"`
	RequiresApproval *bool      `json:"requires_approval,omitempty"`
}

type rejectTransferRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// TransferInitiate records a custody move. Without approval it applies immediately.
func TransferInitiate(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
			return
		}
		var payload initiateTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Initiate(r.Context(), middleware.ActorFromRequest(r), transfers.InitiateInput{
			AssetID: payload.AssetID,
			To: transfers.Destination{
				UserID:       payload.ToUserID,
				LocationID:   payload.ToLocationID,
				DepartmentID: payload.ToDepartmentID,
			},
			Reason:           validators.SanitizeString(payload.Reason, 0),
			Notes:            payload.Notes,
			TransferDate:     payload.TransferDate,
			RequiresApproval: payload.RequiresApproval,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteCreated(w, record)
	}
}

func TransferApprove(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
			return
		}
		id, err := validators.ParseURLUUID(r, "transferId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Approve(r.Context(), middleware.ActorFromRequest(r), id)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func TransferReject(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
			return
		}
		id, err := validators.ParseURLUUID(r, "transferId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload rejectTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Reject(r.Context(), middleware.ActorFromRequest(r), id, validators.SanitizeString(payload.Reason, 0))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// TransferCancel withdraws a pending transfer. Only the initiator may cancel.
func TransferCancel(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
			return
		}
		id, err := validators.ParseURLUUID(r, "transferId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Cancel(r.Context(), middleware.ActorFromRequest(r), id)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func TransferGet(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
			return
		}
		id, err := validators.ParseURLUUID(r, "transferId")
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

func TransferList(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
			return
		}
		var (
			params transfers.ListParams
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
		if params.Status, err = validators.ParseQueryEnum[enums.TransferStatus](r, "status"); err != nil {
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

func TransferPending(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
			return
		}
		rows, err := svc.Pending(r.Context())
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func TransferStatistics(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "transfer")
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

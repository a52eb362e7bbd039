package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/api/middleware"
	"github.com/angelmondragon/assettrack-backend/api/responses"
	"github.com/angelmondragon/assettrack-backend/api/validators"
	"github.com/angelmondragon/assettrack-backend/internal/checkouts"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
)

type checkoutRequest struct {
	AssetID          uuid.UUID  `json:"asset_id" validate:"required"`
	UserID           uuid.UUID  `json:"user_id" validate:"required"`
	ExpectedReturnAt *time.Time `json:"expected_return_at,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

type checkinRequest struct {
	Condition enums.AssetCondition `json:"condition" validate:"required"`
	Notes     *string              `json:"notes,omitempty"`
}

type extendRequest struct {
	ExpectedReturnAt time.Time `json:"expected_return_at" validate:"required"`
	Reason           *string   `json:"reason,omitempty"`
}

type reportIssueRequest struct {
	IssueType   enums.IssueType       `json:"issue_type" validate:"required"`
	Description string                `json:"description" validate:"required"`
	ConditionIn *enums.AssetCondition `json:"condition_in,omitempty"`
}

func CheckoutCreate(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Checkout(r.Context(), middleware.ActorFromRequest(r), checkouts.CheckoutInput{
			AssetID:          payload.AssetID,
			UserID:           payload.UserID,
			ExpectedReturnAt: payload.ExpectedReturnAt,
			Notes:            payload.Notes,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteCreated(w, record)
	}
}

func CheckoutCheckin(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		id, err := validators.ParseURLUUID(r, "checkoutId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload checkinRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Checkin(r.Context(), middleware.ActorFromRequest(r), id, checkouts.CheckinInput{
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

// CheckoutExtend moves the due date of an open checkout.
func CheckoutExtend(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		id, err := validators.ParseURLUUID(r, "checkoutId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload extendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.Extend(r.Context(), middleware.ActorFromRequest(r), id, checkouts.ExtendInput{
			ExpectedReturnAt: payload.ExpectedReturnAt,
			Reason:           payload.Reason,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CheckoutReportIssue closes a checkout as lost, stolen, or damaged.
func CheckoutReportIssue(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		id, err := validators.ParseURLUUID(r, "checkoutId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		var payload reportIssueRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			fail(w, r, logg, err)
			return
		}
		record, err := svc.ReportIssue(r.Context(), middleware.ActorFromRequest(r), id, checkouts.IssueInput{
			Type:        payload.IssueType,
			Description: payload.Description,
			Condition:   payload.ConditionIn,
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func CheckoutGet(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		id, err := validators.ParseURLUUID(r, "checkoutId")
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

func CheckoutList(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		var (
			params checkouts.ListParams
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
		if params.Status, err = validators.ParseQueryEnum[enums.CheckoutStatus](r, "status"); err != nil {
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

func CheckoutsForUser(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		userID, err := validators.ParseURLUUID(r, "userId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		rows, err := svc.ForUser(r.Context(), userID)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func CheckoutOverdue(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
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

func CheckoutStatistics(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
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

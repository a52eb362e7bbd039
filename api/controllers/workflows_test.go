package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assettrack-backend/internal/assignments"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/internal/checkouts"
	"github.com/angelmondragon/assettrack-backend/internal/transfers"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
)

type stubAssignmentService struct {
	assignments.Service
	assign   func(ctx context.Context, actor audit.Actor, input assignments.AssignInput) (*models.AssetAssignment, error)
	giveBack func(ctx context.Context, actor audit.Actor, id uuid.UUID, input assignments.ReturnInput) (*models.AssetAssignment, error)
	forUser  func(ctx context.Context, userID uuid.UUID) ([]models.AssetAssignment, error)
}

func (s stubAssignmentService) Assign(ctx context.Context, actor audit.Actor, input assignments.AssignInput) (*models.AssetAssignment, error) {
	return s.assign(ctx, actor, input)
}

func (s stubAssignmentService) Return(ctx context.Context, actor audit.Actor, id uuid.UUID, input assignments.ReturnInput) (*models.AssetAssignment, error) {
	return s.giveBack(ctx, actor, id, input)
}

func (s stubAssignmentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.AssetAssignment, error) {
	return s.forUser(ctx, userID)
}

func TestAssignmentCreate(t *testing.T) {
	assetID, holderID := uuid.New(), uuid.New()
	svc := stubAssignmentService{assign: func(_ context.Context, _ audit.Actor, input assignments.AssignInput) (*models.AssetAssignment, error) {
		assert.Equal(t, assetID, input.AssetID)
		assert.Equal(t, holderID, input.AssignedTo)
		return &models.AssetAssignment{ID: uuid.New(), AssetID: input.AssetID, AssignedTo: input.AssignedTo, Status: enums.AssignmentStatusActive}, nil
	}}
	req := newRequest(t, http.MethodPost, "/api/v1/assignments", map[string]any{
		"asset_id":    assetID,
		"assigned_to": holderID,
	})
	rec := serve(AssignmentCreate(svc, nil), req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, enums.AssignmentStatusActive, decodeData[models.AssetAssignment](t, rec).Status)
}

func TestAssignmentCreateMapsConflict(t *testing.T) {
	svc := stubAssignmentService{assign: func(context.Context, audit.Actor, assignments.AssignInput) (*models.AssetAssignment, error) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "asset is not available")
	}}
	req := newRequest(t, http.MethodPost, "/api/v1/assignments", map[string]any{
		"asset_id":    uuid.New(),
		"assigned_to": uuid.New(),
	})
	rec := serve(AssignmentCreate(svc, nil), req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "asset is not available", decodeError(t, rec).Message)
}

func TestAssignmentReturnStateConflict(t *testing.T) {
	id := uuid.New()
	svc := stubAssignmentService{giveBack: func(_ context.Context, _ audit.Actor, got uuid.UUID, input assignments.ReturnInput) (*models.AssetAssignment, error) {
		assert.Equal(t, id, got)
		assert.Equal(t, enums.AssetConditionGood, input.Condition)
		return nil, pkgerrors.StateConflict("assignment is not active", enums.AssignmentStatusReturned, enums.AssignmentStatusActive)
	}}
	req := withURLParams(newRequest(t, http.MethodPost, "/api/v1/assignments/"+id.String()+"/return", map[string]any{"condition": "good"}),
		map[string]string{"assignmentId": id.String()})
	rec := serve(AssignmentReturn(svc, nil), req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details, ok := decodeError(t, rec).Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "returned", details["current_status"])
}

func TestAssignmentsForUser(t *testing.T) {
	userID := uuid.New()
	svc := stubAssignmentService{forUser: func(_ context.Context, got uuid.UUID) ([]models.AssetAssignment, error) {
		assert.Equal(t, userID, got)
		return []models.AssetAssignment{{ID: uuid.New()}, {ID: uuid.New()}}, nil
	}}
	req := withURLParams(newRequest(t, http.MethodGet, "/api/v1/users/"+userID.String()+"/assignments", nil), map[string]string{"userId": userID.String()})
	rec := serve(AssignmentsForUser(svc, nil), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]models.AssetAssignment](t, rec), 2)
}

type stubCheckoutService struct {
	checkouts.Service
	checkout    func(ctx context.Context, actor audit.Actor, input checkouts.CheckoutInput) (*models.AssetCheckout, error)
	extend      func(ctx context.Context, actor audit.Actor, id uuid.UUID, input checkouts.ExtendInput) (*models.AssetCheckout, error)
	reportIssue func(ctx context.Context, actor audit.Actor, id uuid.UUID, input checkouts.IssueInput) (*models.AssetCheckout, error)
}

func (s stubCheckoutService) Checkout(ctx context.Context, actor audit.Actor, input checkouts.CheckoutInput) (*models.AssetCheckout, error) {
	return s.checkout(ctx, actor, input)
}

func (s stubCheckoutService) Extend(ctx context.Context, actor audit.Actor, id uuid.UUID, input checkouts.ExtendInput) (*models.AssetCheckout, error) {
	return s.extend(ctx, actor, id, input)
}

func (s stubCheckoutService) ReportIssue(ctx context.Context, actor audit.Actor, id uuid.UUID, input checkouts.IssueInput) (*models.AssetCheckout, error) {
	return s.reportIssue(ctx, actor, id, input)
}

func TestCheckoutCreateParsesDueDate(t *testing.T) {
	due := time.Date(2026, 5, 10, 17, 0, 0, 0, time.UTC)
	svc := stubCheckoutService{checkout: func(_ context.Context, _ audit.Actor, input checkouts.CheckoutInput) (*models.AssetCheckout, error) {
		require.NotNil(t, input.ExpectedReturnAt)
		assert.True(t, due.Equal(*input.ExpectedReturnAt))
		return &models.AssetCheckout{ID: uuid.New(), Status: enums.CheckoutStatusCheckedOut}, nil
	}}
	req := newRequest(t, http.MethodPost, "/api/v1/checkouts", map[string]any{
		"asset_id":           uuid.New(),
		"user_id":            uuid.New(),
		"expected_return_at": due.Format(time.RFC3339),
	})
	rec := serve(CheckoutCreate(svc, nil), req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCheckoutExtendRequiresDate(t *testing.T) {
	id := uuid.New()
	req := withURLParams(newRequest(t, http.MethodPost, "/api/v1/checkouts/"+id.String()+"/extend", map[string]any{"reason": "more time"}),
		map[string]string{"checkoutId": id.String()})
	rec := serve(CheckoutExtend(stubCheckoutService{}, nil), req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Details, "expected_return_at")
}

func TestCheckoutReportIssue(t *testing.T) {
	id := uuid.New()
	svc := stubCheckoutService{reportIssue: func(_ context.Context, _ audit.Actor, got uuid.UUID, input checkouts.IssueInput) (*models.AssetCheckout, error) {
		assert.Equal(t, id, got)
		assert.Equal(t, enums.IssueTypeStolen, input.Type)
		assert.Nil(t, input.Condition)
		return &models.AssetCheckout{ID: got, Status: enums.CheckoutStatusCheckedIn}, nil
	}}
	req := withURLParams(newRequest(t, http.MethodPost, "/api/v1/checkouts/"+id.String()+"/report-issue", map[string]any{
		"issue_type":  "stolen",
		"description": "taken from car",
	}), map[string]string{"checkoutId": id.String()})
	rec := serve(CheckoutReportIssue(svc, nil), req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubTransferService struct {
	transfers.Service
	initiate func(ctx context.Context, actor audit.Actor, input transfers.InitiateInput) (*models.AssetTransfer, error)
	reject   func(ctx context.Context, actor audit.Actor, id uuid.UUID, reason string) (*models.AssetTransfer, error)
	cancel   func(ctx context.Context, actor audit.Actor, id uuid.UUID) (*models.AssetTransfer, error)
}

func (s stubTransferService) Initiate(ctx context.Context, actor audit.Actor, input transfers.InitiateInput) (*models.AssetTransfer, error) {
	return s.initiate(ctx, actor, input)
}

func (s stubTransferService) Reject(ctx context.Context, actor audit.Actor, id uuid.UUID, reason string) (*models.AssetTransfer, error) {
	return s.reject(ctx, actor, id, reason)
}

func (s stubTransferService) Cancel(ctx context.Context, actor audit.Actor, id uuid.UUID) (*models.AssetTransfer, error) {
	return s.cancel(ctx, actor, id)
}

func TestTransferInitiateBuildsDestination(t *testing.T) {
	locationID := uuid.New()
	svc := stubTransferService{initiate: func(_ context.Context, _ audit.Actor, input transfers.InitiateInput) (*models.AssetTransfer, error) {
		assert.Nil(t, input.To.UserID)
		require.NotNil(t, input.To.LocationID)
		assert.Equal(t, locationID, *input.To.LocationID)
		assert.Equal(t, "office move", input.Reason)
		require.NotNil(t, input.RequiresApproval)
		assert.False(t, *input.RequiresApproval)
		return &models.AssetTransfer{ID: uuid.New(), Status: enums.TransferStatusCompleted}, nil
	}}
	req := newRequest(t, http.MethodPost, "/api/v1/transfers", map[string]any{
		"asset_id":          uuid.New(),
		"to_location_id":    locationID,
		"reason":            " office move ",
		"requires_approval": false,
	})
	rec := serve(TransferInitiate(svc, nil), req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, enums.TransferStatusCompleted, decodeData[models.AssetTransfer](t, rec).Status)
}

func TestTransferRejectRequiresReason(t *testing.T) {
	id := uuid.New()
	req := withURLParams(newRequest(t, http.MethodPost, "/api/v1/transfers/"+id.String()+"/reject", map[string]any{}),
		map[string]string{"transferId": id.String()})
	rec := serve(TransferReject(stubTransferService{}, nil), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferCancelForbidden(t *testing.T) {
	id := uuid.New()
	svc := stubTransferService{cancel: func(context.Context, audit.Actor, uuid.UUID) (*models.AssetTransfer, error) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the initiator can cancel a transfer")
	}}
	req := withURLParams(newRequest(t, http.MethodPost, "/api/v1/transfers/"+id.String()+"/cancel", nil),
		map[string]string{"transferId": id.String()})
	rec := serve(TransferCancel(svc, nil), asUser(req, uuid.New(), enums.MemberRoleStaff))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, strings.Contains(decodeError(t, rec).Message, "initiator"))
}

package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/pkg/db/models"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
)

type stubAssetService struct {
	register func(ctx context.Context, actor audit.Actor, input assets.RegisterInput) (*models.Asset, error)
	get      func(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	list     func(ctx context.Context, params assets.ListParams) (*assets.ListResult, error)
	alerts   func(ctx context.Context, windowDays int) (*assets.Alerts, error)
}

func (s stubAssetService) Register(ctx context.Context, actor audit.Actor, input assets.RegisterInput) (*models.Asset, error) {
	return s.register(ctx, actor, input)
}

func (s stubAssetService) Get(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	return s.get(ctx, id)
}

func (s stubAssetService) List(ctx context.Context, params assets.ListParams) (*assets.ListResult, error) {
	return s.list(ctx, params)
}

func (s stubAssetService) History(context.Context, uuid.UUID) (*assets.History, error) {
	return &assets.History{}, nil
}

func (s stubAssetService) Statistics(context.Context) (*assets.Statistics, error) {
	return &assets.Statistics{Total: 3}, nil
}

func (s stubAssetService) Alerts(ctx context.Context, windowDays int) (*assets.Alerts, error) {
	return s.alerts(ctx, windowDays)
}

func TestAssetRegisterPassesActorAndInput(t *testing.T) {
	userID := uuid.New()
	var got assets.RegisterInput
	var actor audit.Actor
	svc := stubAssetService{register: func(_ context.Context, a audit.Actor, input assets.RegisterInput) (*models.Asset, error) {
		got, actor = input, a
		return &models.Asset{ID: uuid.New(), AssetTag: input.AssetTag, Name: input.Name}, nil
	}}

	req := newRequest(t, http.MethodPost, "/api/v1/assets", map[string]any{
		"asset_tag":     "  LAP-001 ",
		"name":          "ThinkPad",
		"purchase_cost": "1299.50",
		"condition":     "good",
	})
	rec := serve(AssetRegister(svc, nil), asUser(req, userID, enums.MemberRoleManager))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "LAP-001", got.AssetTag)
	require.NotNil(t, got.PurchaseCost)
	assert.True(t, got.PurchaseCost.Equal(decimal.RequireFromString("1299.50")))
	require.NotNil(t, actor.UserID)
	assert.Equal(t, userID, *actor.UserID)

	body := decodeData[models.Asset](t, rec)
	assert.Equal(t, "LAP-001", body.AssetTag)
}

func TestAssetRegisterValidation(t *testing.T) {
	svc := stubAssetService{register: func(context.Context, audit.Actor, assets.RegisterInput) (*models.Asset, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}
	rec := serve(AssetRegister(svc, nil), newRequest(t, http.MethodPost, "/api/v1/assets", map[string]any{"name": "x"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeValidation), apiErr.Code)
	assert.Contains(t, apiErr.Details, "asset_tag")
}

func TestAssetGetMapsNotFound(t *testing.T) {
	id := uuid.New()
	svc := stubAssetService{get: func(_ context.Context, got uuid.UUID) (*models.Asset, error) {
		assert.Equal(t, id, got)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
	}}
	req := withURLParams(newRequest(t, http.MethodGet, "/api/v1/assets/"+id.String(), nil), map[string]string{"assetId": id.String()})
	rec := serve(AssetGet(svc, nil), req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetGetRejectsBadID(t *testing.T) {
	req := withURLParams(newRequest(t, http.MethodGet, "/api/v1/assets/nope", nil), map[string]string{"assetId": "nope"})
	rec := serve(AssetGet(stubAssetService{}, nil), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssetListParsesFilters(t *testing.T) {
	locationID := uuid.New()
	var got assets.ListParams
	svc := stubAssetService{list: func(_ context.Context, params assets.ListParams) (*assets.ListResult, error) {
		got = params
		return &assets.ListResult{Items: []models.Asset{}, Cursor: "next"}, nil
	}}
	req := newRequest(t, http.MethodGet, "/api/v1/assets?status=in_use&condition=fair&location_id="+locationID.String()+"&search=dell&limit=5", nil)
	rec := serve(AssetList(svc, nil), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.AssetStatusInUse, got.Status)
	assert.Equal(t, enums.AssetConditionFair, got.Condition)
	require.NotNil(t, got.LocationID)
	assert.Equal(t, locationID, *got.LocationID)
	assert.Equal(t, "dell", got.Search)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, "next", decodeData[assets.ListResult](t, rec).Cursor)
}

func TestAssetListRejectsUnknownStatus(t *testing.T) {
	rec := serve(AssetList(stubAssetService{}, nil), newRequest(t, http.MethodGet, "/api/v1/assets?status=borrowed", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssetAlertsWindow(t *testing.T) {
	var window int
	svc := stubAssetService{alerts: func(_ context.Context, days int) (*assets.Alerts, error) {
		window = days
		return &assets.Alerts{WindowDays: days}, nil
	}}
	rec := serve(AssetAlerts(svc, nil), newRequest(t, http.MethodGet, "/api/v1/assets/alerts?days=14", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, window)

	rec = serve(AssetAlerts(svc, nil), newRequest(t, http.MethodGet, "/api/v1/assets/alerts?days=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssetHandlersWithoutService(t *testing.T) {
	rec := serve(AssetStatistics(nil, nil), newRequest(t, http.MethodGet, "/api/v1/assets/statistics", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

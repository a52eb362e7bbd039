package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/pkg/auth"
	"github.com/angelmondragon/assettrack-backend/pkg/config"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "assettrack-test", ExpirationMinutes: 60}

func mintToken(t *testing.T, userID uuid.UUID, role enums.MemberRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAuthBuildsActor(t *testing.T) {
	userID := uuid.New()
	var (
		actor audit.Actor
		role  enums.MemberRole
	)
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromRequest(r)
		role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+mintToken(t, userID, enums.MemberRoleManager))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "scanner/1.0")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, actor.UserID)
	assert.Equal(t, userID, *actor.UserID)
	assert.Equal(t, "203.0.113.7", actor.IPAddress)
	assert.Equal(t, "scanner/1.0", actor.UserAgent)
	assert.Equal(t, enums.MemberRoleManager, role)
}

func TestActorFromUnauthenticatedRequestIsSystem(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	actor := ActorFromRequest(req)
	assert.True(t, actor.IsSystem())
	assert.Equal(t, "192.0.2.1", actor.IPAddress)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(nil, enums.MemberRoleManager, enums.MemberRoleAdmin)(okHandler())

	cases := map[enums.MemberRole]int{
		enums.MemberRoleAdmin:   http.StatusNoContent,
		enums.MemberRoleManager: http.StatusNoContent,
		enums.MemberRoleStaff:   http.StatusForbidden,
		"":                      http.StatusForbidden,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), uuid.New(), role))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, string(role))
	}
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

// WithIdentity stores the authenticated user on the context.
func WithIdentity(ctx context.Context, userID uuid.UUID, role enums.MemberRole) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.MemberRole {
	if ctx == nil {
		return ""
	}
	role, _ := ctx.Value(ctxRole).(enums.MemberRole)
	return role
}

// ActorFromRequest builds the audit actor for a request. Unauthenticated
// requests yield the system actor with the caller's address.
func ActorFromRequest(r *http.Request) audit.Actor {
	actor := audit.Actor{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if id, ok := UserIDFromContext(r.Context()); ok {
		actor.UserID = &id
	}
	return actor
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Interface(key, value)
	})
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Fields(fields)
	})
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

// WithActor tags the authenticated caller. A nil user marks a system actor.
func (l *Logger) WithActor(ctx context.Context, userID *uuid.UUID, role string) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context {
		if userID != nil {
			c = c.Str("user_id", userID.String())
		}
		if role != "" {
			c = c.Str("actor_role", role)
		}
		return c
	})
}

// WithAsset tags the asset a line is about. uuid.Nil is ignored.
func (l *Logger) WithAsset(ctx context.Context, assetID uuid.UUID) context.Context {
	if assetID == uuid.Nil {
		return ctx
	}
	return l.WithField(ctx, "asset_id", assetID.String())
}

// WithSubject tags the workflow record (transfer, checkout, assignment,
// maintenance) an operation touched.
func (l *Logger) WithSubject(ctx context.Context, subjectType string, subjectID uuid.UUID) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context {
		c = c.Str("subject_type", subjectType)
		if subjectID != uuid.Nil {
			c = c.Str("subject_id", subjectID.String())
		}
		return c
	})
}

// WithTransition tags an asset status change. Equal statuses log only the
// current one.
func (l *Logger) WithTransition(ctx context.Context, from, to string) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context {
		if from == to {
			return c.Str("asset_status", to)
		}
		return c.Str("status_from", from).Str("status_to", to)
	})
}

// WithError attaches err as a field for lines logged below error level.
func (l *Logger) WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return l.WithField(ctx, "error", err.Error())
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/assettrack-backend/api/responses"
	"github.com/angelmondragon/assettrack-backend/api/validators"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	pkgpagination "github.com/angelmondragon/assettrack-backend/pkg/pagination"
)

// AuditLogList filters the trail by action, subject, user, and date range.
func AuditLogList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		var (
			params audit.ListParams
			err    error
		)
		if params.Action, err = validators.ParseQueryEnum[enums.AuditAction](r, "action"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.SubjectType, err = validators.ParseQueryEnum[enums.AuditSubjectType](r, "model_type"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.SubjectID, err = validators.ParseQueryUUID(r, "model_id"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.UserID, err = validators.ParseQueryUUID(r, "user_id"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.From, err = validators.ParseQueryTime(r, "date_from"); err != nil {
			fail(w, r, logg, err)
			return
		}
		if params.To, err = validators.ParseQueryTime(r, "date_to"); err != nil {
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

func AuditLogGet(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		id, err := validators.ParseURLUUID(r, "auditLogId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		row, err := svc.Get(r.Context(), id)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AuditLogRecent(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pkgpagination.MaxLimit)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		subjectType, err := validators.ParseQueryEnum[enums.AuditSubjectType](r, "model_type")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		rows, err := svc.Recent(r.Context(), limit, subjectType)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AuditLogSearch(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pkgpagination.MaxLimit)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		term := validators.SanitizeString(r.URL.Query().Get("search"), 128)
		rows, err := svc.Search(r.Context(), term, limit)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AuditLogStatistics defaults to the trailing window when no dates are given.
func AuditLogStatistics(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		from, err := validators.ParseQueryTime(r, "date_from")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "date_to")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		stats, err := svc.Statistics(r.Context(), from, to)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func AuditLogChanges(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		id, err := validators.ParseURLUUID(r, "auditLogId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		changes, err := svc.CompareChanges(r.Context(), id)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, changes)
	}
}

func AuditLogsForSubject(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		subjectType := enums.AuditSubjectType(strings.TrimSpace(chi.URLParam(r, "subjectType")))
		subjectID, err := validators.ParseURLUUID(r, "subjectId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		rows, err := svc.ForSubject(r.Context(), subjectType, subjectID)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func AuditLogTimeline(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		subjectType := enums.AuditSubjectType(strings.TrimSpace(chi.URLParam(r, "subjectType")))
		subjectID, err := validators.ParseURLUUID(r, "subjectId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		days, err := svc.Timeline(r.Context(), subjectType, subjectID)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, days)
	}
}

func AuditLogsForUser(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		userID, err := validators.ParseURLUUID(r, "userId")
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pkgpagination.MaxLimit)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		rows, err := svc.ForUser(r.Context(), userID, limit)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

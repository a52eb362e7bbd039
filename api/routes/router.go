package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/assettrack-backend/api/controllers"
	"github.com/angelmondragon/assettrack-backend/api/middleware"
	"github.com/angelmondragon/assettrack-backend/internal/assets"
	"github.com/angelmondragon/assettrack-backend/internal/assignments"
	"github.com/angelmondragon/assettrack-backend/internal/audit"
	"github.com/angelmondragon/assettrack-backend/internal/checkouts"
	"github.com/angelmondragon/assettrack-backend/internal/maintenance"
	"github.com/angelmondragon/assettrack-backend/internal/transfers"
	"github.com/angelmondragon/assettrack-backend/pkg/config"
	"github.com/angelmondragon/assettrack-backend/pkg/db"
	"github.com/angelmondragon/assettrack-backend/pkg/enums"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	"github.com/angelmondragon/assettrack-backend/pkg/redis"
)

// Services groups the domain services the HTTP surface exposes.
type Services struct {
	Assets      assets.Service
	Assignments assignments.Service
	Checkouts   checkouts.Service
	Transfers   transfers.Service
	Maintenance maintenance.Service
	Audit       audit.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	services Services,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	deps := map[string]controllers.Pinger{"db": dbP, "redis": nil}
	if redisClient != nil {
		deps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps, logg))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	approvers := middleware.RequireRole(logg, enums.MemberRoleManager, enums.MemberRoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.WriteRateLimit(redisClient, cfg.RateLimit.Mutations, cfg.RateLimit.Window, logg))
			r.Use(middleware.Idempotency(redisClient, cfg.Eventing.IdempotencyTTL, logg))
		}

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", controllers.AssetList(services.Assets, logg))
			r.Post("/", controllers.AssetRegister(services.Assets, logg))
			r.Get("/statistics", controllers.AssetStatistics(services.Assets, logg))
			r.Get("/alerts", controllers.AssetAlerts(services.Assets, logg))
			r.Get("/{assetId}", controllers.AssetGet(services.Assets, logg))
			r.Get("/{assetId}/history", controllers.AssetHistory(services.Assets, logg))
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", controllers.AssignmentList(services.Assignments, logg))
			r.Post("/", controllers.AssignmentCreate(services.Assignments, logg))
			r.Get("/statistics", controllers.AssignmentStatistics(services.Assignments, logg))
			r.Get("/{assignmentId}", controllers.AssignmentGet(services.Assignments, logg))
			r.Post("/{assignmentId}/return", controllers.AssignmentReturn(services.Assignments, logg))
		})

		r.Route("/checkouts", func(r chi.Router) {
			r.Get("/", controllers.CheckoutList(services.Checkouts, logg))
			r.Post("/", controllers.CheckoutCreate(services.Checkouts, logg))
			r.Get("/overdue", controllers.CheckoutOverdue(services.Checkouts, logg))
			r.Get("/statistics", controllers.CheckoutStatistics(services.Checkouts, logg))
			r.Get("/{checkoutId}", controllers.CheckoutGet(services.Checkouts, logg))
			r.Post("/{checkoutId}/checkin", controllers.CheckoutCheckin(services.Checkouts, logg))
			r.Post("/{checkoutId}/extend", controllers.CheckoutExtend(services.Checkouts, logg))
			r.Post("/{checkoutId}/report-issue", controllers.CheckoutReportIssue(services.Checkouts, logg))
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", controllers.TransferList(services.Transfers, logg))
			r.Post("/", controllers.TransferInitiate(services.Transfers, logg))
			r.Get("/pending", controllers.TransferPending(services.Transfers, logg))
			r.Get("/statistics", controllers.TransferStatistics(services.Transfers, logg))
			r.Get("/{transferId}", controllers.TransferGet(services.Transfers, logg))
			r.With(approvers).Post("/{transferId}/approve", controllers.TransferApprove(services.Transfers, logg))
			r.With(approvers).Post("/{transferId}/reject", controllers.TransferReject(services.Transfers, logg))
			r.Post("/{transferId}/cancel", controllers.TransferCancel(services.Transfers, logg))
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/", controllers.MaintenanceList(services.Maintenance, logg))
			r.Post("/", controllers.MaintenanceSchedule(services.Maintenance, logg))
			r.Get("/overdue", controllers.MaintenanceOverdue(services.Maintenance, logg))
			r.Get("/upcoming", controllers.MaintenanceUpcoming(services.Maintenance, logg))
			r.Get("/statistics", controllers.MaintenanceStatistics(services.Maintenance, logg))
			r.Get("/{maintenanceId}", controllers.MaintenanceGet(services.Maintenance, logg))
			r.Patch("/{maintenanceId}", controllers.MaintenanceUpdate(services.Maintenance, logg))
			r.Post("/{maintenanceId}/start", controllers.MaintenanceStart(services.Maintenance, logg))
			r.Post("/{maintenanceId}/complete", controllers.MaintenanceComplete(services.Maintenance, logg))
			r.Post("/{maintenanceId}/cancel", controllers.MaintenanceCancel(services.Maintenance, logg))
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/assignments", controllers.AssignmentsForUser(services.Assignments, logg))
			r.Get("/checkouts", controllers.CheckoutsForUser(services.Checkouts, logg))
		})

		r.Route("/audit-logs", func(r chi.Router) {
			r.Get("/", controllers.AuditLogList(services.Audit, logg))
			r.Get("/recent", controllers.AuditLogRecent(services.Audit, logg))
			r.Get("/search", controllers.AuditLogSearch(services.Audit, logg))
			r.Get("/statistics", controllers.AuditLogStatistics(services.Audit, logg))
			r.Get("/users/{userId}", controllers.AuditLogsForUser(services.Audit, logg))
			r.Get("/subjects/{subjectType}/{subjectId}", controllers.AuditLogsForSubject(services.Audit, logg))
			r.Get("/subjects/{subjectType}/{subjectId}/timeline", controllers.AuditLogTimeline(services.Audit, logg))
			r.Get("/{auditLogId}", controllers.AuditLogGet(services.Audit, logg))
			r.Get("/{auditLogId}/changes", controllers.AuditLogChanges(services.Audit, logg))
		})
	})

	return r
}

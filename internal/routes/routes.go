package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BruksfildServices01/termine-api/internal/archive"
	"github.com/BruksfildServices01/termine-api/internal/audit"
	"github.com/BruksfildServices01/termine-api/internal/config"
	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/handlers"
	"github.com/BruksfildServices01/termine-api/internal/middleware"
	"github.com/BruksfildServices01/termine-api/internal/observability/metrics"
	"github.com/BruksfildServices01/termine-api/internal/ratelimit"
	"github.com/BruksfildServices01/termine-api/internal/secret"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/termine-api/internal/usecase/appointment"
	ucUser "github.com/BruksfildServices01/termine-api/internal/usecase/user"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

// Deps are the singletons the API is built from. Audit, Metrics, Limiter
// and Archive are optional.
type Deps struct {
	Config   *config.Config
	Store    domain.Store
	Logger   *logging.Logger
	Audit    *audit.Dispatcher
	Metrics  *metrics.BookingMetrics
	Gatherer prometheus.Gatherer
	Limiter  *ratelimit.LoginLimiter
	Archive  *archive.ReportArchive
	Clock    handlers.Clock
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	loc := timezone.Location(cfg.Timezone)
	log := d.Logger
	if log == nil {
		log = logging.Default()
	}

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	obs := ucAppointment.Observer{
		Audit:   d.Audit,
		Metrics: d.Metrics,
		Logger:  log,
	}

	listFreeUC := ucAppointment.NewListFreeSlots(d.Store, cfg.ClaimTimeout, cfg.NumDisplaySlots)
	claimUC := ucAppointment.NewClaimAppointment(d.Store, secret.ClaimTokens(), cfg.ClaimTimeout, obs)
	bookUC := ucAppointment.NewBookAppointment(d.Store, secret.AccessCodes(), loc, obs)
	releaseUC := ucAppointment.NewReleaseClaim(d.Store, obs)
	listBookingsUC := ucAppointment.NewListBookings(d.Store, loc)
	authenticateUC := ucUser.NewAuthenticate(d.Store)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(authenticateUC, d.Limiter, cfg, log)
	meHandler := handlers.NewMeHandler()
	appointmentHandler := handlers.NewAppointmentHandler(
		listFreeUC,
		claimUC,
		bookUC,
		releaseUC,
		loc,
		d.Clock,
		log,
	)
	reportHandler := handlers.NewReportHandler(
		listBookingsUC,
		d.Archive,
		d.Audit,
		loc,
		d.Clock,
		log,
	)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.Store, loc)

	// ======================================================
	// 🔧 OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg, d.Store))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/next_free_slots", appointmentHandler.NextFreeSlots)
			secured.GET("/claim_appointment", appointmentHandler.Claim)
			secured.POST("/book_appointment", appointmentHandler.Book)
			secured.DELETE("/claim_token", appointmentHandler.Release)

			// ------------------------------
			// REPORTS
			// ------------------------------
			secured.GET("/booked", reportHandler.Booked)
			secured.GET("/list_for_day.csv", reportHandler.ListForDayCSV)
			secured.GET("/booking_list.xlsx", reportHandler.BookingListXLSX)

			admin := secured.Group("/")
			admin.Use(middleware.RequireAdmin())
			admin.GET("/audit_logs", auditLogsHandler.List)
		}
	}
}

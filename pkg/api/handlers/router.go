package handlers

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltflow/crm/pkg/api/middleware"
	"github.com/voltflow/crm/pkg/auth"
	"github.com/voltflow/crm/pkg/cache"
	"github.com/voltflow/crm/pkg/conversion"
	"github.com/voltflow/crm/pkg/lifecycle"
	"github.com/voltflow/crm/pkg/loaders"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/notify"
	"github.com/voltflow/crm/pkg/reports"
	"github.com/voltflow/crm/pkg/store"
)

// Deps is everything the HTTP surface needs
type Deps struct {
	Store      *store.Store
	DB         Pinger
	Cache      *cache.Client
	Loaders    *loaders.Service
	Lifecycle  *lifecycle.Service
	Conversion *conversion.Service
	Notify     *notify.Service
	Reports    *reports.Service
	Metrics    *metrics.Metrics
	// Gatherer backs /metrics; defaults to the process registry
	Gatherer prometheus.Gatherer

	JWTSecret          string
	JWTExpirationHours int
	AllowedRoles       []string
	ResolveTimeout     time.Duration
}

// RegisterRoutes mounts every route on e
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Validator = NewCustomValidator()

	var cachePinger Pinger
	var blacklist *auth.TokenBlacklist
	if d.Cache != nil {
		cachePinger = d.Cache
		blacklist = auth.NewTokenBlacklist(d.Cache)
	}

	leadHandler := NewLeadHandler(d.Store, d.Loaders, d.Lifecycle, d.Conversion)
	clientHandler := NewClientHandler(d.Store, d.Loaders, d.Lifecycle)
	quoteHandler := NewQuoteHandler(d.Store, d.Loaders, d.Lifecycle, d.Conversion, d.Notify)
	jobHandler := NewJobHandler(d.Store, d.Loaders, d.Lifecycle, d.Notify)
	invoiceHandler := NewInvoiceHandler(d.Store, d.Loaders, d.Lifecycle, d.Notify)
	technicianHandler := NewTechnicianHandler(d.Store)
	messageHandler := NewMessageHandler(d.Notify)
	dashboardHandler := NewDashboardHandler(d.Loaders)
	reportHandler := NewReportHandler(d.Reports)
	authHandler := NewAuthHandler(d.Store, blacklist, d.Metrics, d.JWTSecret, d.JWTExpirationHours)
	healthHandler := NewHealthHandler(d.DB, cachePinger)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Public routes
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := e.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)

	protect := []echo.MiddlewareFunc{
		middleware.JWTMiddlewareWithConfig(middleware.AuthConfig{
			Secret:         d.JWTSecret,
			Blacklist:      blacklist,
			Profiles:       d.Store.Profiles(),
			ResolveTimeout: d.ResolveTimeout,
		}),
		middleware.RequireRole(auth.NewGuard(d.AllowedRoles...)),
	}

	api := v1.Group("", protect...)

	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me)

	// Leads
	api.GET("/leads", leadHandler.List)
	api.GET("/leads/stats", leadHandler.Stats)
	api.POST("/leads", leadHandler.Create)
	api.GET("/leads/:id", leadHandler.Get)
	api.PUT("/leads/:id", leadHandler.Update)
	api.DELETE("/leads/:id", leadHandler.Delete)
	api.PATCH("/leads/:id/status", leadHandler.UpdateStatus)
	api.POST("/leads/:id/convert", leadHandler.Convert)
	api.POST("/leads/bulk/status", leadHandler.BulkStatus)
	api.POST("/leads/bulk/delete", leadHandler.BulkDelete)

	// Clients
	api.GET("/clients", clientHandler.List)
	api.POST("/clients", clientHandler.Create)
	api.DELETE("/clients/by-lead/:leadId", leadHandler.DeleteClientByLead)
	api.GET("/clients/:id", clientHandler.Get)
	api.PUT("/clients/:id", clientHandler.Update)
	api.DELETE("/clients/:id", clientHandler.Delete)
	api.PATCH("/clients/:id/status", clientHandler.UpdateStatus)

	// Quotes
	api.GET("/quotes", quoteHandler.List)
	api.POST("/quotes", quoteHandler.Create)
	api.GET("/quotes/:id", quoteHandler.Get)
	api.PUT("/quotes/:id", quoteHandler.Update)
	api.DELETE("/quotes/:id", quoteHandler.Delete)
	api.PATCH("/quotes/:id/status", quoteHandler.UpdateStatus)
	api.POST("/quotes/:id/invoice", quoteHandler.CreateInvoice)
	api.POST("/quotes/:id/job", quoteHandler.ConvertToJob)
	api.POST("/quotes/:id/send", quoteHandler.Send)
	api.POST("/quotes/:id/sms", quoteHandler.SendSMS)

	// Jobs
	api.GET("/jobs", jobHandler.List)
	api.POST("/jobs", jobHandler.Create)
	api.GET("/jobs/:id", jobHandler.Get)
	api.PUT("/jobs/:id", jobHandler.Update)
	api.DELETE("/jobs/:id", jobHandler.Delete)
	api.PATCH("/jobs/:id/status", jobHandler.UpdateStatus)
	api.POST("/jobs/:id/schedule", jobHandler.Schedule)

	// Invoices
	api.GET("/invoices", invoiceHandler.List)
	api.POST("/invoices", invoiceHandler.Create)
	api.GET("/invoices/:id", invoiceHandler.Get)
	api.PUT("/invoices/:id", invoiceHandler.Update)
	api.DELETE("/invoices/:id", invoiceHandler.Delete)
	api.PATCH("/invoices/:id/status", invoiceHandler.UpdateStatus)
	api.POST("/invoices/:id/send", invoiceHandler.Send)
	api.POST("/invoices/:id/sms", invoiceHandler.SendSMS)

	// Messages
	api.GET("/sms/:sid", messageHandler.SMSStatus)

	// Technicians
	api.GET("/technicians", technicianHandler.List)
	api.POST("/technicians", technicianHandler.Create)
	api.GET("/technicians/:id", technicianHandler.Get)
	api.PUT("/technicians/:id", technicianHandler.Update)
	api.DELETE("/technicians/:id", technicianHandler.Delete)

	// Dashboard
	api.GET("/dashboard", dashboardHandler.Stats)
	api.GET("/deadlines", dashboardHandler.Deadlines)

	// Reports
	api.GET("/reports/channels", reportHandler.Channels)
	api.GET("/reports/channels/summary", reportHandler.Summary)
	api.GET("/reports/channels/export", reportHandler.Export)
	api.GET("/reports/channels/:id", reportHandler.GetChannel)
	api.POST("/reports/channels", reportHandler.SaveChannel)
	api.PUT("/reports/channels/:id", reportHandler.UpdateChannel)
	api.DELETE("/reports/channels/:id", reportHandler.DeleteChannel)
	api.GET("/reports/lead-sources", reportHandler.LeadSources)

	// Calendar
	api.GET("/schedule-job", jobHandler.UpcomingEvents)
	api.POST("/schedule-job", jobHandler.ScheduleJob)

	// Unversioned routes kept for existing clients
	e.POST("/invoices/:id/send", invoiceHandler.Send, protect...)
	e.POST("/invoices/:id/sms", invoiceHandler.SendSMS, protect...)
	e.POST("/quotes/:id/send", quoteHandler.Send, protect...)
	e.POST("/quotes/:id/sms", quoteHandler.SendSMS, protect...)
	legacy := e.Group("/api", protect...)
	legacy.GET("/schedule-job", jobHandler.UpcomingEvents)
	legacy.POST("/schedule-job", jobHandler.ScheduleJob)
	legacy.GET("/reports/channels", reportHandler.Channels)
}

package main

// @title VoltFlow CRM API
// @version 1.0
// @description Leads, clients, quotes, jobs and invoices for small service businesses.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voltflow/crm/config"
	"github.com/voltflow/crm/pkg/api/handlers"
	"github.com/voltflow/crm/pkg/cache"
	"github.com/voltflow/crm/pkg/calendar"
	"github.com/voltflow/crm/pkg/conversion"
	"github.com/voltflow/crm/pkg/database"
	"github.com/voltflow/crm/pkg/email"
	"github.com/voltflow/crm/pkg/jobs"
	"github.com/voltflow/crm/pkg/lifecycle"
	"github.com/voltflow/crm/pkg/loaders"
	"github.com/voltflow/crm/pkg/logger"
	"github.com/voltflow/crm/pkg/metrics"
	custommiddleware "github.com/voltflow/crm/pkg/middleware"
	"github.com/voltflow/crm/pkg/notify"
	"github.com/voltflow/crm/pkg/reports"
	"github.com/voltflow/crm/pkg/sms"
	"github.com/voltflow/crm/pkg/store"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLog := logger.New(cfg.LogLevel).With("service", "voltflow-crm")

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	st := store.New(db.Driver)

	// Redis is optional; without it reports are not cached and logout
	// cannot revoke tokens
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, continuing without cache: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New(prometheus.DefaultRegisterer)
	log.Printf("✅ Prometheus metrics initialized")

	// Notification providers
	mailer, err := email.NewSender(email.Config{
		FromEmail:      cfg.MailFrom,
		FromName:       cfg.MailFromName,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		SMTPUser:       cfg.SMTPUser,
		SMTPPassword:   cfg.SMTPPassword,
		SendGridAPIKey: cfg.SendGridAPIKey,
	})
	if err != nil {
		log.Fatalf("❌ Failed to configure email: %v", err)
	}
	log.Printf("✉️  Email transport: %s", mailer.Name())

	var smsProvider sms.Provider = sms.Disabled{}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioPhoneNumber != "" {
		smsProvider = sms.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		log.Printf("✅ Twilio SMS enabled")
	} else {
		log.Printf("ℹ️  SMS disabled (Twilio not configured)")
	}

	var scheduler calendar.Scheduler = calendar.Noop{}
	if cfg.GoogleCalendarCredsB64 != "" {
		gs, err := calendar.NewGoogleScheduler(context.Background(), cfg.GoogleCalendarCredsB64, cfg.GoogleCalendarID)
		if err != nil {
			log.Printf("⚠️  Google Calendar disabled: %v", err)
		} else {
			scheduler = gs
			log.Printf("✅ Google Calendar sync enabled")
		}
	}

	// Services
	conversionService := conversion.NewService(st, prometheusMetrics, appLog.With("component", "conversion")).
		WithInvoiceDueDays(cfg.InvoiceDueDays)

	lifecycleOpts := []lifecycle.Option{
		lifecycle.WithPolicy(lifecycle.NewPolicy(cfg.StatusPolicy)),
		lifecycle.WithMetrics(prometheusMetrics),
		lifecycle.WithLogger(appLog.With("component", "lifecycle")),
	}
	if cfg.AutoConvertQualified {
		lifecycleOpts = append(lifecycleOpts, lifecycle.WithAutoConvert(conversionService))
	}
	lifecycleService := lifecycle.NewService(st, lifecycleOpts...)

	notifyService := notify.NewService(st,
		notify.WithMailer(mailer),
		notify.WithSMS(smsProvider, cfg.TwilioPhoneNumber),
		notify.WithPhoneRegion(cfg.PhoneRegion),
		notify.WithCalendar(scheduler),
		notify.WithMetrics(prometheusMetrics),
		notify.WithLogger(appLog.With("component", "notify")),
	)

	reportService := reports.NewService(st, redisClient, prometheusMetrics, appLog.With("component", "reports")).
		WithCacheTTL(cfg.ReportCacheTTL)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	defer globalRateLimiter.Stop()

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(globalRateLimiter.RateLimitMiddleware())

	handlers.RegisterRoutes(e, handlers.Deps{
		Store:              st,
		DB:                 db,
		Cache:              redisClient,
		Loaders:            loaders.NewService(st),
		Lifecycle:          lifecycleService,
		Conversion:         conversionService,
		Notify:             notifyService,
		Reports:            reportService,
		Metrics:            prometheusMetrics,
		JWTSecret:          cfg.JWTSecret,
		JWTExpirationHours: cfg.JWTExpirationHours,
		AllowedRoles:       cfg.AllowedRoles,
		ResolveTimeout:     cfg.AuthResolveTimeout,
	})

	// Cron jobs
	cronManager := jobs.NewCronManager(st, prometheusMetrics, nil)
	if err := cronManager.SetupJobs(cfg.OverdueSweepSchedule); err != nil {
		log.Fatalf("❌ Failed to set up cron jobs: %v", err)
	}
	cronManager.Start()

	// Pool gauge
	stopPoolStats := make(chan struct{})
	go reportPoolStats(db, prometheusMetrics, stopPoolStats)

	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 VoltFlow CRM API starting on %s", address)
	log.Printf("📝 Log level: %s", cfg.LogLevel)
	log.Printf("🔐 JWT expiration: %d hours, allowed roles: %v", cfg.JWTExpirationHours, cfg.AllowedRoles)
	log.Printf("🌍 CORS: %v", cfg.CORSAllowedOrigins)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("🔁 Status policy: %s (auto convert qualified leads: %t)", statusPolicyName(cfg.StatusPolicy), cfg.AutoConvertQualified)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	close(stopPoolStats)
	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// openDatabase connects to PostgreSQL, or SQLite when DB_DRIVER=sqlite3
func openDatabase(cfg *config.Config) (*database.Client, error) {
	if cfg.DBDriver == "sqlite3" || cfg.DBDriver == "sqlite" {
		log.Printf("🗄️  Using SQLite database %s", cfg.DatabaseURL)
		return database.NewSQLiteClient(cfg.DatabaseURL)
	}

	pool := database.DefaultPoolConfig()
	pool.MaxOpenConns = cfg.DBMaxOpenConns
	pool.MaxIdleConns = cfg.DBMaxIdleConns

	var sslCfg *database.SSLConfig
	if cfg.DBSSLMode != "" {
		sslCfg = &database.SSLConfig{
			Mode:         cfg.DBSSLMode,
			CertPath:     cfg.DBSSLCertPath,
			KeyPath:      cfg.DBSSLKeyPath,
			RootCertPath: cfg.DBSSLRootCertPath,
		}
	}
	return database.NewClientWithPoolAndSSL(cfg.DatabaseURL, pool, sslCfg)
}

// reportPoolStats publishes the open connection count every 15 seconds
func reportPoolStats(db *database.Client, m *metrics.Metrics, stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.UpdateDBConnections(float64(db.Stats().OpenConnections))
		case <-stop:
			return
		}
	}
}

func statusPolicyName(name string) string {
	if name == "" {
		return lifecycle.PolicyPermissive
	}
	return name
}

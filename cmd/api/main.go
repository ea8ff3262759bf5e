package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talentbridge/sales-crm-platform/internal/activity"
	"github.com/talentbridge/sales-crm-platform/internal/api/router"
	"github.com/talentbridge/sales-crm-platform/internal/app/bootstrap"
	"github.com/talentbridge/sales-crm-platform/internal/bulkimport"
	appconfig "github.com/talentbridge/sales-crm-platform/internal/config"
	httpmiddleware "github.com/talentbridge/sales-crm-platform/internal/http/middleware"
	"github.com/talentbridge/sales-crm-platform/internal/leads"
	"github.com/talentbridge/sales-crm-platform/internal/observability/metrics"
	"github.com/talentbridge/sales-crm-platform/internal/outreach"
	"github.com/talentbridge/sales-crm-platform/internal/proposals"
	"github.com/talentbridge/sales-crm-platform/internal/ratecards"
	"github.com/talentbridge/sales-crm-platform/internal/schedule"
	"github.com/talentbridge/sales-crm-platform/internal/storage"
	"github.com/talentbridge/sales-crm-platform/internal/templates"
	"github.com/talentbridge/sales-crm-platform/internal/users"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// repositories bundles the storage ports behind the services. The backend is
// chosen once at startup: Postgres when DATABASE_URL is set, in-memory
// otherwise. Never mixed, never re-selected per request.
type repositories struct {
	leads     leads.Repository
	users     users.Repository
	templates templates.Repository
	rateCards ratecards.Repository
	proposals proposals.Repository
	schedule  schedule.Repository
	audit     activity.Recorder
}

func buildRepositories(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *repositories {
	if cfg.UseMemoryStore() {
		logger.Warn("no DATABASE_URL configured; running on in-memory repositories")
		return &repositories{
			leads:     leads.NewInMemoryRepository(),
			users:     users.NewInMemoryRepository(),
			templates: templates.NewInMemoryRepository(),
			rateCards: ratecards.NewInMemoryRepository(),
			proposals: proposals.NewInMemoryRepository(),
			schedule:  schedule.NewInMemoryRepository(),
			audit:     activity.NewMemoryRecorder(),
		}
	}

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	db := bootstrap.ConnectSQL(ctx, cfg.DatabaseURL, logger)
	if pool == nil || db == nil {
		logger.Error("DATABASE_URL set but postgres unreachable")
		os.Exit(1)
	}
	return &repositories{
		leads:     leads.NewPostgresRepository(pool),
		users:     users.NewSQLRepository(db),
		templates: templates.NewSQLRepository(db),
		rateCards: ratecards.NewPostgresRepository(pool),
		proposals: proposals.NewPostgresRepository(pool),
		schedule:  schedule.NewPostgresRepository(pool),
		audit:     activity.NewService(db),
	}
}

func setupMetrics() (http.Handler, *metrics.CRMMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCRMMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sales-crm-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	repos := buildRepositories(ctx, cfg, logger)
	metricsHandler, crmMetrics := setupMetrics()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	awsCfg, err := bootstrap.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Services
	userSvc := users.NewService(repos.users, logger.Component("users"))
	leadSvc := leads.NewService(repos.leads, repos.users, repos.audit, crmMetrics, logger.Component("leads"))
	templateSvc := templates.NewService(repos.templates, logger.Component("templates"))

	var cardCache *ratecards.Cache
	if redisClient != nil {
		cardCache = ratecards.NewCache(redisClient, 10*time.Minute)
	}
	cardSvc := ratecards.NewService(repos.rateCards, cardCache, logger.Component("ratecards"))

	proposalSvc := proposals.NewService(repos.proposals, repos.leads, templateSvc, cardSvc,
		repos.audit, logger.Component("proposals"))

	scheduleSvc := schedule.NewService(repos.schedule, nil,
		schedule.MeetingLinkMinter(cfg.MeetingLinkBaseURL), logger.Component("schedule")).
		WithDefaultTimezone(cfg.DefaultTimezone)

	emailSender := bootstrap.BuildEmailSender(cfg, awsCfg, logger.Component("outreach"))
	whatsappSender := outreach.NewStubWhatsAppSender(cfg.WhatsAppSenderID, logger.Component("outreach"))
	var statusStore *outreach.StatusStore
	if redisClient != nil {
		statusStore = outreach.NewStatusStore(redisClient, 0)
	}
	dispatcher := outreach.NewDispatcher(emailSender, whatsappSender, statusStore,
		crmMetrics, logger.Component("outreach")).WithTemplates(templateSvc)

	importer := bulkimport.NewImporter(leadSvc, repos.leads, repos.users,
		crmMetrics, logger.Component("import"))

	attachmentStore := bootstrap.BuildAttachmentStore(awsCfg, cfg, logger.Component("storage"))

	r := router.New(&router.Config{
		Logger: logger,

		AuthHandler:        users.NewAuthHandler(userSvc, cfg.AuthJWTSecret, cfg.AuthTokenTTL, logger.Component("auth")),
		UsersHandler:       users.NewHandler(userSvc, logger.Component("users")),
		LeadsHandler:       leads.NewHandler(leadSvc, logger.Component("leads")),
		TemplatesHandler:   templates.NewHandler(templateSvc),
		RateCardsHandler:   ratecards.NewHandler(cardSvc),
		ProposalsHandler:   proposals.NewHandler(proposalSvc),
		ScheduleHandler:    schedule.NewHandler(scheduleSvc),
		OutreachHandler:    outreach.NewHandler(dispatcher, statusStore),
		ImportHandler:      bulkimport.NewHandler(importer),
		AttachmentsHandler: storage.NewHandler(attachmentStore),

		AuthJWTSecret:      cfg.AuthJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        httpmiddleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		MetricsHandler:     metricsHandler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

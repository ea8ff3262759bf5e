// Package router assembles the HTTP surface of the CRM.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
	"github.com/talentbridge/sales-crm-platform/internal/bulkimport"
	httpmiddleware "github.com/talentbridge/sales-crm-platform/internal/http/middleware"
	"github.com/talentbridge/sales-crm-platform/internal/leads"
	"github.com/talentbridge/sales-crm-platform/internal/outreach"
	"github.com/talentbridge/sales-crm-platform/internal/proposals"
	"github.com/talentbridge/sales-crm-platform/internal/ratecards"
	"github.com/talentbridge/sales-crm-platform/internal/schedule"
	"github.com/talentbridge/sales-crm-platform/internal/storage"
	"github.com/talentbridge/sales-crm-platform/internal/templates"
	"github.com/talentbridge/sales-crm-platform/internal/users"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	AuthHandler        *users.AuthHandler
	UsersHandler       *users.Handler
	LeadsHandler       *leads.Handler
	TemplatesHandler   *templates.Handler
	RateCardsHandler   *ratecards.Handler
	ProposalsHandler   *proposals.Handler
	ScheduleHandler    *schedule.Handler
	OutreachHandler    *outreach.Handler
	ImportHandler      *bulkimport.Handler
	AttachmentsHandler *storage.Handler

	AuthJWTSecret      string
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			public.Mount("/auth", cfg.AuthHandler.Routes())
		}
	})

	// Authenticated API. Every route below carries an actor; per-operation
	// permissions (lead locks, remark deletion) are enforced in the services.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(httpmiddleware.Auth(cfg.AuthJWTSecret))

		if cfg.LeadsHandler != nil {
			api.Mount("/leads", cfg.LeadsHandler.Routes())
		}
		if cfg.TemplatesHandler != nil {
			api.Mount("/templates", cfg.TemplatesHandler.Routes())
		}
		if cfg.ProposalsHandler != nil {
			api.Mount("/proposals", cfg.ProposalsHandler.Routes())
		}
		if cfg.ScheduleHandler != nil {
			api.Mount("/schedule", cfg.ScheduleHandler.Routes())
		}
		if cfg.OutreachHandler != nil {
			api.Mount("/outreach", cfg.OutreachHandler.Routes())
		}
		if cfg.AttachmentsHandler != nil {
			api.Mount("/attachments", cfg.AttachmentsHandler.Routes())
		}

		// Rate card reads are open to every role; mutation and activation
		// sit behind the manager gate inside the handler routes.
		if cfg.RateCardsHandler != nil {
			api.Mount("/rate-cards", cfg.RateCardsHandler.Routes())
		}

		if cfg.ImportHandler != nil {
			api.Group(func(elevated chi.Router) {
				elevated.Use(httpmiddleware.RequireRoles(users.RoleAdmin, users.RoleManager))
				elevated.Mount("/import", cfg.ImportHandler.Routes())
			})
		}
		if cfg.UsersHandler != nil {
			api.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireRoles(users.RoleAdmin))
				admin.Mount("/users", cfg.UsersHandler.Routes())
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

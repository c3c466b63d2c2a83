package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/buildcrm/internal/api/handler"
	mw "github.com/edvin/buildcrm/internal/api/middleware"
	"github.com/edvin/buildcrm/internal/config"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/model"
)

// Database is the connection the server runs on.
type Database interface {
	core.DB
	Ping(ctx context.Context) error
}

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	db          Database
	cfg         *config.Config
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, db Database, services *core.Services, cfg *config.Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		db:          db,
		cfg:         cfg,
		auditLogger: mw.NewAuditLogger(db, logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.cfg.CORSOrigins))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	guard := s.services.Guard
	guarded := func(c core.Capability) func(http.Handler) http.Handler {
		return mw.Require(guard, c)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.Authenticate(s.services.Identity))
		r.Use(s.auditLogger.Middleware)

		// Status
		health := handler.NewHealth()
		r.Get("/", health.Index)
		r.Get("/health", health.Index)

		// Public catalog
		catalog := handler.NewCatalog(s.services.Entitlement)
		r.Get("/plans", catalog.Plans)
		r.Get("/modules/public", catalog.PublicModules)
		r.Get("/modules-public", catalog.PublicModules)

		// Auth
		auth := handler.NewAuth(s.services.Identity)
		r.Post("/auth/register", auth.Register)
		r.Post("/auth/login", auth.Login)
		r.With(guarded(core.StatusRead)).Get("/auth/me", auth.Me)

		// Platform administration
		admin := handler.NewAdmin(s.services.Tenant, s.services.Entitlement, s.services.User, s.services.Dashboard)
		r.Route("/admin", func(r chi.Router) {
			r.Use(guarded(core.AdminOnly))
			r.Get("/stats", admin.Stats)
			r.Get("/clients", admin.ListClients)
			r.Get("/clients/{id}", admin.GetClient)
			r.Post("/clients/{id}/toggle-status", admin.ToggleStatus)
			r.Put("/clients/{id}/subscription", admin.ChangeSubscription)
			r.Get("/modules", catalog.AllModules)
		})

		// Client dashboard
		client := handler.NewClient(s.services.Entitlement, s.services.Dashboard)
		r.Route("/client", func(r chi.Router) {
			r.Use(guarded(core.TenantScoped))
			r.Get("/stats", client.Stats)
			r.Get("/modules", client.Modules)
		})

		// Module requests
		moduleRequest := handler.NewModuleRequest(s.services.ModuleRequest)
		r.With(guarded(core.OwnerOnly)).Post("/module-requests", moduleRequest.Create)
		r.With(guarded(core.Authenticated)).Get("/module-requests", moduleRequest.List)
		r.With(guarded(core.AdminOnly)).Put("/module-requests", moduleRequest.Decide)

		// White label
		whiteLabel := handler.NewWhiteLabel(s.services.WhiteLabel, guard)
		r.Route("/whitelabel", func(r chi.Router) {
			r.Use(guarded(core.PlanGated(model.FeatureWhiteLabel)))
			r.Get("/", whiteLabel.Get)
			r.Put("/", whiteLabel.Update)
		})

		// Users
		users := handler.NewUsers(s.services.User)
		r.With(guarded(core.TenantScoped)).Get("/users", users.List)
		r.With(guarded(core.OwnerOnly)).Post("/users", users.Create)
		r.With(guarded(core.OwnerOnly)).Put("/users/{id}", users.Update)
		r.With(guarded(core.OwnerOnly)).Delete("/users/{id}", users.Delete)

		// Webhooks
		webhook := handler.NewWebhook(s.services.Lead)
		r.Post("/webhook/leads", webhook.Leads)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Close flushes pending audit entries.
func (s *Server) Close() {
	s.auditLogger.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Package router assembles the portal's HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harborview/clinic-portal/internal/appointments"
	"github.com/harborview/clinic-portal/internal/directory"
	httpmiddleware "github.com/harborview/clinic-portal/internal/http/middleware"
	"github.com/harborview/clinic-portal/internal/nav"
	"github.com/harborview/clinic-portal/internal/wizard"
	"github.com/harborview/clinic-portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	DirectoryHandler    *directory.Handler
	AppointmentsHandler *appointments.Handler
	WizardHandler       *wizard.Handler
	NavHandler          *nav.Handler
	SnapshotStream      *wizard.SnapshotStream
	MetricsHandler      http.Handler
	AuthJWTSecret       string
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		// Snapshot stream: the session id in the query scopes what a
		// connection can see, and session ids are unguessable.
		if cfg.SnapshotStream != nil {
			public.Get("/ws/booking", cfg.SnapshotStream.HandleWebSocket)
		}
		// Navigation works for anonymous visitors too, so auth is optional.
		if cfg.NavHandler != nil {
			public.With(httpmiddleware.OptionalAuth(cfg.AuthJWTSecret)).Mount("/api/nav", cfg.NavHandler.Routes())
		}
	})

	// Authenticated API
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.Auth(cfg.AuthJWTSecret))
		if cfg.DirectoryHandler != nil {
			api.Mount("/api", cfg.DirectoryHandler.Routes())
		}
		if cfg.AppointmentsHandler != nil {
			api.Mount("/api/appointments", cfg.AppointmentsHandler.Routes())
		}
		if cfg.WizardHandler != nil {
			api.Mount("/api/booking", cfg.WizardHandler.Routes())
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/auth"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/dashboard"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/invoices"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/jobcards"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/observability"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/rbac"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	JobCardHandler   *jobcards.Handler
	InvoiceHandler   *invoices.Handler
	DashboardHandler *dashboard.Handler
	RoleHandler      *rbac.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with workshop defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.JobCardHandler != nil {
		r.Route("/jobcards", params.JobCardHandler.MountRoutes)
	}
	if params.InvoiceHandler != nil {
		r.Route("/invoices", params.InvoiceHandler.MountRoutes)
	}
	if params.DashboardHandler != nil {
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	}
	if params.RoleHandler != nil {
		r.Route("/roles", params.RoleHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

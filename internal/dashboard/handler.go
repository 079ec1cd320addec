package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/platform/httpx"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/rbac"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

// Handler serves the dashboard summary endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a dashboard Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers the dashboard endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermDashboardView))
		r.Get("/", h.show)
		r.Get("/summary", h.show)
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Load(r.Context())
	if err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "could not load dashboard")
		return
	}

	recent := make([]map[string]any, 0, len(summary.RecentInvoices))
	for _, inv := range summary.RecentInvoices {
		recent = append(recent, map[string]any{
			"id":              inv.ID,
			"job_card_id":     inv.JobCardID,
			"job_description": inv.JobDescription,
			"total_amount":    shared.FormatCents(inv.TotalCents),
			"created_at":      shared.DisplayTime(inv.CreatedAt),
		})
	}

	httpx.OK(w, "dashboard summary", map[string]any{
		"status_counts":       summary.StatusCounts,
		"open_job_cards":      summary.OpenJobCards,
		"month_invoice_count": summary.MonthInvoiceCount,
		"month_revenue":       shared.FormatCents(summary.MonthRevenueCents),
		"recent_invoices":     recent,
		"generated_at":        shared.DisplayTime(summary.GeneratedAt),
	})
}

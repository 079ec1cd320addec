package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/jobcards"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/observability"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/platform/httpx"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/rbac"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

// Handler manages invoice HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      rbacMW,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermInvoiceView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermInvoiceCreate))
		r.Post("/", h.create)
	})
}

type createInvoiceRequest struct {
	JobCardID        int64  `json:"job_card_id" validate:"required,gt=0"`
	LaborCost        string `json:"labor_cost" validate:"required"`
	PartsCost        string `json:"parts_cost" validate:"required"`
	MechanicID       *int64 `json:"mechanic_id" validate:"omitempty,gt=0"`
	ServiceAdvisorID *int64 `json:"service_advisor_id" validate:"omitempty,gt=0"`
}

// create handles POST /invoices
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			httpx.Fail(w, http.StatusBadRequest, "field "+fieldErrs[0].Field()+" is missing or invalid")
			return
		}
		httpx.Fail(w, http.StatusBadRequest, "invalid request")
		return
	}

	laborCents, err := shared.ParseCents(req.LaborCost)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, shared.UserSafeMessage(err))
		return
	}
	partsCents, err := shared.ParseCents(req.PartsCost)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, shared.UserSafeMessage(err))
		return
	}

	inv, err := h.service.Create(r.Context(), CreateInput{
		JobCardID:        req.JobCardID,
		LaborCostCents:   laborCents,
		PartsCostCents:   partsCents,
		MechanicID:       req.MechanicID,
		ServiceAdvisorID: req.ServiceAdvisorID,
		GeneratedBy:      rbac.UserIDFromRequest(r),
	})
	if err != nil {
		h.respondError(w, "create invoice", err, req.JobCardID)
		return
	}
	if h.metrics != nil {
		h.metrics.InvoiceGenerated()
	}
	httpx.JSON(w, http.StatusCreated, httpx.Envelope{Success: true, Message: "invoice created", Data: map[string]any{"invoice": invoicePayload(inv)}})
}

// list handles GET /invoices
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	invoices, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	rows := make([]map[string]any, 0, len(invoices))
	for i := range invoices {
		rows = append(rows, invoicePayload(&invoices[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": rows})
}

// show handles GET /invoices/{id}
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get invoice", err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, invoicePayload(inv))
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error, id int64) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, jobcards.ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, shared.UserSafeMessage(shared.ErrNotFound))
	case errors.Is(err, ErrAlreadyInvoiced):
		httpx.Fail(w, http.StatusConflict, ErrAlreadyInvoiced.Error())
	case errors.Is(err, ErrNotCompleted), errors.Is(err, ErrNegativeCost):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrLockHeld):
		httpx.Fail(w, http.StatusConflict, shared.UserSafeMessage(err))
	default:
		h.logger.Error(op, slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func invoicePayload(inv *Invoice) map[string]any {
	return map[string]any{
		"id":                 inv.ID,
		"job_card_id":        inv.JobCardID,
		"labor_cost":         shared.FormatCents(inv.LaborCostCents),
		"parts_cost":         shared.FormatCents(inv.PartsCostCents),
		"total_amount":       shared.FormatCents(inv.TotalCents),
		"generated_by":       inv.GeneratedBy,
		"mechanic_id":        inv.MechanicID,
		"service_advisor_id": inv.ServiceAdvisorID,
		"created_at":         shared.DisplayTime(inv.CreatedAt),
	}
}

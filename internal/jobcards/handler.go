package jobcards

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/observability"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/platform/httpx"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/rbac"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

// Handler manages job card HTTP endpoints.
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
		r.Use(h.rbac.RequireAny(shared.PermJobCardView))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermJobCardCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermJobCardAssign))
		r.Post("/{id}/assign", h.assign)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermJobCardWork))
		r.Post("/{id}/start", h.start)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermJobCardComplete))
		r.Post("/{id}/complete", h.complete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermFinanceResolve))
		r.Post("/{id}/finance", h.resolveFinance)
	})
}

// list handles GET /jobcards
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 20
	req := ListRequest{Limit: limit, Offset: (page - 1) * limit}
	if s := r.URL.Query().Get("status"); s != "" {
		status := Status(s)
		if !status.IsValid() {
			httpx.Fail(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		req.Status = &status
	}
	if s := r.URL.Query().Get("search"); s != "" {
		req.Search = &s
	}

	summaries, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list job cards", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	rows := make([]map[string]any, 0, len(summaries))
	for i := range summaries {
		row := jobCardPayload(&summaries[i].JobCard)
		row["vehicle_name"] = summaries[i].VehicleName
		row["mechanic_name"] = summaries[i].MechanicName
		rows = append(rows, row)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"job_cards":  rows,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

// detail handles GET /jobcards/{id}
func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		h.respondError(w, "get job card detail", err, id)
		return
	}

	partRows := make([]map[string]any, 0, len(detail.Parts))
	for _, u := range detail.Parts {
		partRows = append(partRows, map[string]any{
			"item_id":    u.ItemID,
			"item_name":  u.ItemName,
			"quantity":   u.Quantity,
			"unit_price": shared.FormatCents(u.UnitPriceCents),
			"line_total": shared.FormatCents(u.LineTotalCents()),
		})
	}

	payload := jobCardPayload(&detail.JobCard)
	payload["vehicle_name"] = detail.VehicleName
	payload["driver_name"] = detail.DriverName
	payload["mechanic_name"] = detail.MechanicName
	payload["advisor_name"] = detail.AdvisorName
	payload["created_by_name"] = detail.CreatedByName
	payload["invoiced"] = detail.Invoiced
	payload["parts"] = partRows
	payload["parts_cost"] = shared.FormatCents(detail.PartsCostCents)
	httpx.JSON(w, http.StatusOK, payload)
}

// create handles POST /jobcards
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateStruct(h.validator, req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	jc, err := h.service.Create(r.Context(), CreateInput{
		Description:      req.Description,
		VehicleID:        req.VehicleID,
		DriverID:         req.DriverID,
		ServiceAdvisorID: req.ServiceAdvisorID,
		CreatedBy:        rbac.UserIDFromRequest(r),
	})
	if err != nil {
		h.respondError(w, "create job card", err, 0)
		return
	}
	h.recordTransition(jc.Status)
	httpx.JSON(w, http.StatusCreated, httpx.Envelope{Success: true, Message: "job card created", Data: map[string]any{"job_card": jobCardPayload(jc)}})
}

// assign handles POST /jobcards/{id}/assign
func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateStruct(h.validator, req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	jc, err := h.service.Assign(r.Context(), id, req.MechanicID, rbac.UserIDFromRequest(r))
	if err != nil {
		h.respondError(w, "assign mechanic", err, id)
		return
	}
	h.recordTransition(jc.Status)
	httpx.OK(w, "mechanic assigned", map[string]any{"job_card": jobCardPayload(jc)})
}

// start handles POST /jobcards/{id}/start
func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	jc, err := h.service.StartWork(r.Context(), id, rbac.UserIDFromRequest(r))
	if err != nil {
		h.respondError(w, "start work", err, id)
		return
	}
	h.recordTransition(jc.Status)
	httpx.OK(w, "work started", map[string]any{"job_card": jobCardPayload(jc)})
}

// complete handles POST /jobcards/{id}/complete
func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req completeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateStruct(h.validator, req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	laborCents, err := req.laborCostCents()
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, shared.UserSafeMessage(err))
		return
	}

	jc, err := h.service.Complete(r.Context(), id, laborCents, rbac.UserIDFromRequest(r))
	if err != nil {
		h.respondError(w, "complete job card", err, id)
		return
	}
	h.recordTransition(jc.Status)
	httpx.OK(w, "job card completed", map[string]any{"job_card": jobCardPayload(jc)})
}

// resolveFinance handles POST /jobcards/{id}/finance
func (h *Handler) resolveFinance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req resolveFinanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateStruct(h.validator, req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	jc, err := h.service.ResolveFinanceStatus(r.Context(), ResolveFinanceInput{
		JobCardID:          id,
		NewStatus:          Status(req.NewStatus),
		CancellationReason: req.CancellationReason,
		ActorID:            rbac.UserIDFromRequest(r),
	})
	if err != nil {
		h.respondError(w, "resolve finance status", err, id)
		return
	}
	h.recordTransition(jc.Status)
	httpx.OK(w, "finance status recorded", map[string]any{"job_card": jobCardPayload(jc)})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "invalid job card id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error, id int64) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, shared.UserSafeMessage(ErrNotFound))
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrDescriptionRequired),
		errors.Is(err, ErrVehicleRequired),
		errors.Is(err, ErrMechanicRequired),
		errors.Is(err, ErrNegativeLaborCost):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrLockHeld):
		httpx.Fail(w, http.StatusConflict, shared.UserSafeMessage(err))
	default:
		h.logger.Error(op, slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) recordTransition(to Status) {
	if h.metrics != nil {
		h.metrics.JobCardTransition(string(to))
	}
}

// jobCardPayload renders a job card for API consumers: money as fixed
// two-decimal strings, timestamps in the display timezone.
func jobCardPayload(jc *JobCard) map[string]any {
	var laborCost any
	if jc.LaborCostCents != nil {
		laborCost = shared.FormatCents(*jc.LaborCostCents)
	}
	var completedAt any
	if jc.CompletedAt != nil {
		completedAt = shared.DisplayTime(*jc.CompletedAt)
	}
	return map[string]any{
		"id":                  jc.ID,
		"status":              jc.Status,
		"description":         jc.Description,
		"vehicle_id":          jc.VehicleID,
		"driver_id":           jc.DriverID,
		"created_by":          jc.CreatedBy,
		"mechanic_id":         jc.MechanicID,
		"service_advisor_id":  jc.ServiceAdvisorID,
		"labor_cost":          laborCost,
		"cancellation_reason": jc.CancellationReason,
		"created_at":          shared.DisplayTime(jc.CreatedAt),
		"completed_at":        completedAt,
	}
}

package jobcards

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/rbac"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

type allowAllPermissions struct{}

func (allowAllPermissions) EffectivePermissions(context.Context, int64) ([]string, error) {
	return shared.WorkshopScopes(), nil
}

type denyAllPermissions struct{}

func (denyAllPermissions) EffectivePermissions(context.Context, int64) ([]string, error) {
	return nil, nil
}

func newHandlerRouter(t *testing.T, repo *memoryRepo, perms rbac.PermissionSource) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	svc, _ := newTestService(repo)
	handler := NewHandler(logger, svc, rbac.Middleware{Service: perms, Logger: logger}, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{ID: "test-session"}
			sess.SetUser("2")
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/jobcards", handler.MountRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCompleteEndpointRendersMoneyAsDecimalString(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(JobCard{ID: 42, Status: StatusInProgress, Description: "Full service", VehicleID: 1})
	router := newHandlerRouter(t, repo, allowAllPermissions{})

	rr := postJSON(t, router, "/jobcards/42/complete", map[string]any{"labor_cost": "1500.00"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var envelope struct {
		Data struct {
			JobCard map[string]any `json:"job_card"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, "completed", envelope.Data.JobCard["status"])
	assert.Equal(t, "1500.00", envelope.Data.JobCard["labor_cost"])
	assert.NotEmpty(t, envelope.Data.JobCard["completed_at"])
}

func TestCompleteEndpointRejectsMalformedAmount(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(JobCard{ID: 42, Status: StatusInProgress, Description: "Full service", VehicleID: 1})
	router := newHandlerRouter(t, repo, allowAllPermissions{})

	rr := postJSON(t, router, "/jobcards/42/complete", map[string]any{"labor_cost": "15.001"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFinanceEndpointRequiresReasonForCancel(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(JobCard{ID: 7, Status: StatusCompleted, Description: "Radiator", VehicleID: 1})
	router := newHandlerRouter(t, repo, allowAllPermissions{})

	rr := postJSON(t, router, "/jobcards/7/finance", map[string]any{"new_status": "finance_canceled"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postJSON(t, router, "/jobcards/7/finance", map[string]any{
		"new_status":          "finance_canceled",
		"cancellation_reason": "Client disputed the quote",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestStartEndpointConflictsOutOfOrder(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(JobCard{ID: 5, Status: StatusPending, Description: "Oil change", VehicleID: 1})
	router := newHandlerRouter(t, repo, allowAllPermissions{})

	rr := postJSON(t, router, "/jobcards/5/start", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUnknownJobCardReturnsNotFound(t *testing.T) {
	repo := newMemoryRepo()
	router := newHandlerRouter(t, repo, allowAllPermissions{})

	rr := postJSON(t, router, "/jobcards/99/start", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutesEnforcePermissions(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(JobCard{ID: 5, Status: StatusAssigned, Description: "Oil change", VehicleID: 1})
	router := newHandlerRouter(t, repo, denyAllPermissions{})

	rr := postJSON(t, router, "/jobcards/5/start", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/jobcards/5", nil)
	get := httptest.NewRecorder()
	router.ServeHTTP(get, req)
	assert.Equal(t, http.StatusForbidden, get.Code)
}

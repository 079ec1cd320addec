package rbac

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

type fakeRoleSource struct {
	roles    []Role
	bindings []RolePermission
}

func (f *fakeRoleSource) ListRoles(context.Context) ([]Role, error) { return f.roles, nil }

func (f *fakeRoleSource) ListRolePermissions(context.Context) ([]RolePermission, error) {
	return f.bindings, nil
}

type staticPerms struct{ perms []string }

func (s staticPerms) EffectivePermissions(context.Context, int64) ([]string, error) {
	return s.perms, nil
}

func newRolesRouter(source RoleSource, perms []string) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, source, Middleware{Service: staticPerms{perms: perms}, Logger: logger})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			sess.SetUser("2")
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/roles", handler.MountRoutes)
	return r
}

func TestRolesListingGroupsPermissions(t *testing.T) {
	source := &fakeRoleSource{
		roles: []Role{
			{ID: 1, Name: "admin", Description: "full access", CreatedAt: time.Now()},
			{ID: 2, Name: "mechanic", Description: "workshop floor", CreatedAt: time.Now()},
			{ID: 3, Name: "observer", CreatedAt: time.Now()},
		},
		bindings: []RolePermission{
			{RoleID: 1, Permission: shared.PermJobCardView},
			{RoleID: 1, Permission: shared.PermRBACView},
			{RoleID: 2, Permission: shared.PermJobCardWork},
		},
	}
	router := newRolesRouter(source, []string{shared.PermRBACView})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Roles []struct {
				Name        string   `json:"name"`
				Permissions []string `json:"permissions"`
			} `json:"roles"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Len(t, body.Data.Roles, 3)

	assert.Equal(t, "admin", body.Data.Roles[0].Name)
	assert.ElementsMatch(t, []string{shared.PermJobCardView, shared.PermRBACView}, body.Data.Roles[0].Permissions)
	assert.Equal(t, []string{shared.PermJobCardWork}, body.Data.Roles[1].Permissions)
	assert.Empty(t, body.Data.Roles[2].Permissions)
}

func TestRolesListingRequiresPermission(t *testing.T) {
	router := newRolesRouter(&fakeRoleSource{}, []string{shared.PermJobCardView})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

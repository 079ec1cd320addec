package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/platform/httpx"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

// RoleSource reads the configured roles and their permission bindings.
type RoleSource interface {
	ListRoles(ctx context.Context) ([]Role, error)
	ListRolePermissions(ctx context.Context) ([]RolePermission, error)
}

// Handler serves the admin roles listing.
type Handler struct {
	logger  *slog.Logger
	service RoleSource
	rbac    Middleware
}

// NewHandler constructs a roles Handler.
func NewHandler(logger *slog.Logger, service RoleSource, rbacMW Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers the roles endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRBACView))
		r.Get("/", h.list)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	bindings, err := h.service.ListRolePermissions(r.Context())
	if err != nil {
		h.logger.Error("list role permissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	permsByRole := make(map[int64][]string, len(roles))
	for _, b := range bindings {
		permsByRole[b.RoleID] = append(permsByRole[b.RoleID], b.Permission)
	}

	rows := make([]map[string]any, 0, len(roles))
	for _, role := range roles {
		perms := permsByRole[role.ID]
		if perms == nil {
			perms = []string{}
		}
		rows = append(rows, map[string]any{
			"id":          role.ID,
			"name":        role.Name,
			"description": role.Description,
			"permissions": perms,
		})
	}
	httpx.OK(w, "roles", map[string]any{"roles": rows})
}

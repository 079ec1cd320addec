// Package rbac provides role based access control for workshop routes.
package rbac

import "time"

// Role groups permissions for one workshop function (supervisor,
// mechanic, parts manager, finance, admin).
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// RolePermission binds one permission string to a role.
type RolePermission struct {
	RoleID     int64
	Permission string
}

// Package policy holds the access rules shared by every handler. The
// functions are pure: they look only at the caller and the owner id of
// the resource being touched.
package policy

import "github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"

// Caller is the authenticated identity making a request.
type Caller struct {
	ID    string
	Email string
	Role  model.Role
}

func IsAdmin(c Caller) bool {
	switch c.Role {
	case model.RoleAdmin:
		return true
	case model.RoleNormal:
		return false
	}
	return false
}

// CanAccessOwnResource reports whether c may read or change a resource
// owned by targetOwnerID: admins always can, everyone else only their own.
func CanAccessOwnResource(c Caller, targetOwnerID string) bool {
	if IsAdmin(c) {
		return true
	}
	return c.ID != "" && c.ID == targetOwnerID
}

// CanAssignRole reports whether c may create an account with role r.
// Only admins hand out the admin role; anonymous callers pass a zero Caller.
func CanAssignRole(c Caller, r model.Role) bool {
	switch r {
	case model.RoleNormal:
		return true
	case model.RoleAdmin:
		return IsAdmin(c)
	}
	return false
}

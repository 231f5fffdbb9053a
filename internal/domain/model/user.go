package model

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleNormal Role = "normal"
)

// ParseRole accepts exactly "admin" or "normal". An empty string yields
// RoleNormal, the default for new accounts.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleNormal, "":
		return RoleNormal, nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleNormal:
		return true
	}
	return false
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	GrossSalary    Money     `json:"gross_salary"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

package domain

import (
	"fmt"
	"time"
)

// Role enumerates the closed set of portal roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleDepartment Role = "department"
)

// ParseRole validates a raw role value against the closed set. Unknown
// values are a hard failure, never a silent deny.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleSuperAdmin, RoleDepartment:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("invalid user role: %q", raw)
	}
}

// IsAdministrative reports whether the role may operate the admin console.
func (r Role) IsAdministrative() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AccountStatus represents lifecycle states for an account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
	// AccountStatusDeleted is terminal; rows are never physically removed.
	AccountStatusDeleted AccountStatus = "deleted"
)

// Account is a principal with a role and authentication state.
// Department is set iff Role == RoleDepartment.
type Account struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	Role              Role
	Department        *string
	Status            AccountStatus
	LoginAttempts     int
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Locked reports whether the account has crossed the failed-login threshold.
func (a *Account) Locked(threshold int) bool {
	return a.LoginAttempts >= threshold
}

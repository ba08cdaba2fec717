package domain

import (
	"context"
	"errors"
)

// Principal is the authenticated caller executing an operation.
type Principal struct {
	UserID string
	Role   Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin can manage accounts and restrictions
	RoleAdmin Role = "admin"

	// RoleCustomer can move money out of the accounts they own
	RoleCustomer Role = "customer"

	// RoleViewer can only view resources, no mutations
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleCustomer: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanMoveMoney checks if the role can start or authorize transactions
func (r Role) CanMoveMoney() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// CanManageAccounts checks if the role can manage accounts and restrictions
func (r Role) CanManageAccounts() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ExecutorID returns the acting user id, empty for anonymous callers.
func ExecutorID(ctx context.Context) string {
	if p, ok := PrincipalFrom(ctx); ok {
		return p.UserID
	}
	return ""
}

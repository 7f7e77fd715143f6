package accounts

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithClaimsContext sets the AccountClaims in the given context
func WithClaimsContext(r context.Context, claims *AccountClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AccountClaims from the standard context
func GetClaims(ctx context.Context) (*AccountClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*AccountClaims)
	return raw, ok
}

// GetRouterClaims extracts the AccountClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (*AccountClaims, bool) {
	if key == "" {
		key = SessionContextKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(*AccountClaims)
	return claims, ok
}

// Can is a convenience function to check role grants directly from the
// standard context. Use CanFromRouter for router-based contexts.
func Can(ctx context.Context, permission string) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return roleCan(claims.Role(), permission)
}

// CanFromRouter is a convenience function to check role grants directly from
// the router context
func CanFromRouter(ctx router.Context, permission string) bool {
	claims, ok := GetRouterClaims(ctx, "")
	if !ok {
		return false
	}
	return roleCan(claims.Role(), permission)
}

func roleCan(role UserRole, permission string) bool {
	switch permission {
	case "read":
		return role.CanRead()
	case "edit":
		return role.CanEdit()
	case "create":
		return role.CanCreate()
	case "delete":
		return role.CanDelete()
	default:
		return false
	}
}

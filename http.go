package accounts

import (
	"errors"

	"github.com/goliatone/go-accounts/middleware/tokenguard"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// SessionContextKey is the locals key the guard stores validated claims under.
const SessionContextKey = "user"

// RouteGuard protects routes with session token authentication. Purpose
// tokens never pass the guard, they only work against their own operation.
type RouteGuard struct {
	tokens       TokenService
	Logger       Logger
	ErrorHandler router.ErrorHandler
}

func NewRouteGuard(tokens TokenService) *RouteGuard {
	g := &RouteGuard{
		tokens: tokens,
		Logger: defLogger{},
	}
	g.ErrorHandler = g.defaultErrHandler
	return g
}

// ProtectedRoute builds a middleware that admits any valid session.
func (g *RouteGuard) ProtectedRoute() router.MiddlewareFunc {
	return g.guard(nil)
}

// ProtectedRouteWithRole builds a middleware that additionally requires a
// minimum role level.
func (g *RouteGuard) ProtectedRouteWithRole(minRole UserRole) router.MiddlewareFunc {
	return g.guard(func(claims tokenguard.Claims) error {
		ac, ok := claims.(*AccountClaims)
		if !ok || !ac.IsAtLeast(minRole) {
			return goerrors.New("insufficient role", goerrors.CategoryAuthz).
				WithCode(goerrors.CodeForbidden)
		}
		return nil
	})
}

func (g *RouteGuard) guard(authorize func(tokenguard.Claims) error) router.MiddlewareFunc {
	return tokenguard.New(tokenguard.Config{
		Validator:    sessionValidator{tokens: g.tokens},
		ContextKey:   SessionContextKey,
		ErrorHandler: g.ErrorHandler,
		Authorize:    authorize,
		ContextEnricher: func(ctx router.Context, claims tokenguard.Claims) {
			if ac, ok := claims.(*AccountClaims); ok {
				ctx.SetContext(WithClaimsContext(ctx.Context(), ac))
			}
		},
	})
}

func (g *RouteGuard) defaultErrHandler(ctx router.Context, err error) error {
	g.Logger.Debug("route guard rejected request: %v", err)

	if errors.Is(err, tokenguard.ErrTokenMissingOrMalformed) {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"statusCode": router.StatusBadRequest,
			"message":    tokenguard.ErrTokenMissingOrMalformed.Error(),
		})
	}

	status, message := ErrorStatus(err)
	if status < router.StatusBadRequest || status >= router.StatusInternalServerError {
		status = router.StatusUnauthorized
		message = "invalid or expired token"
	}
	return ctx.JSON(status, map[string]any{
		"statusCode": status,
		"message":    message,
	})
}

// sessionValidator adapts TokenService to the guard's validator contract.
type sessionValidator struct {
	tokens TokenService
}

func (v sessionValidator) Validate(tokenString string) (tokenguard.Claims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if claims.Purpose != "" {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

// SessionFromContext recovers the validated claims stored by the guard.
func SessionFromContext(ctx router.Context) (*AccountClaims, error) {
	raw := ctx.Locals(SessionContextKey)
	if raw == nil {
		return nil, ErrUnauthorized
	}

	claims, ok := raw.(*AccountClaims)
	if !ok {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

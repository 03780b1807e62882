// Package auth resolves bearer tokens to staff principals. Role requirements
// are expressed as explicit parameters on service operations rather than
// route-level guards, so authorization stays a testable precondition of the
// domain core.
package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

// Role identifies a staff capability level.
type Role string

const (
	RoleWaiter  Role = "waiter"
	RoleCashier Role = "cashier"
)

// Principal is an authenticated staff member.
type Principal struct {
	Token string
	Role  Role
}

// CanMutateOrders reports whether the principal may open, extend or close
// orders and manage the menu.
func (p Principal) CanMutateOrders() bool {
	return p.Role == RoleWaiter
}

// CanViewOrders reports whether the principal may read orders and receipts.
func (p Principal) CanViewOrders() bool {
	return p.Role == RoleWaiter || p.Role == RoleCashier
}

// Resolver maps bearer tokens onto principals.
type Resolver struct {
	byToken map[string]Role
}

// Module provides the token resolver to Fx.
var Module = fx.Provide(NewResolver)

// NewResolver builds a Resolver from the statically configured token lists.
func NewResolver(cfg config.Config) *Resolver {
	byToken := make(map[string]Role, len(cfg.Auth.WaiterTokens)+len(cfg.Auth.CashierTokens))
	for _, token := range cfg.Auth.WaiterTokens {
		byToken[token] = RoleWaiter
	}
	for _, token := range cfg.Auth.CashierTokens {
		byToken[token] = RoleCashier
	}
	return &Resolver{byToken: byToken}
}

// Resolve returns the principal for a bearer token.
func (r *Resolver) Resolve(token string) (Principal, error) {
	if token == "" {
		return Principal{}, errorbank.Unauthenticated("missing bearer token")
	}
	role, ok := r.byToken[token]
	if !ok {
		return Principal{}, errorbank.Unauthenticated("unknown bearer token")
	}
	return Principal{Token: token, Role: role}, nil
}

const principalContextKey = "mesa.principal"

// Middleware authenticates requests and stores the principal on the echo
// context. Requests without a valid token are rejected with 401 before the
// handler runs.
func Middleware(resolver *Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			principal, err := resolver.Resolve(token)
			if err != nil {
				return err
			}
			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header. Only the
// Bearer scheme is accepted; a bare token or another scheme is rejected.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errorbank.Unauthenticated("missing bearer token")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errorbank.Unauthenticated("authorization header must use the Bearer scheme")
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", errorbank.Unauthenticated("missing bearer token")
	}
	return token, nil
}

// FromContext extracts the authenticated principal placed by Middleware.
func FromContext(c echo.Context) (Principal, error) {
	principal, ok := c.Get(principalContextKey).(Principal)
	if !ok {
		return Principal{}, errorbank.Unauthenticated("missing bearer token")
	}
	return principal, nil
}

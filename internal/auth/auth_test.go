package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"

	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

func testResolver() *Resolver {
	return NewResolver(config.Config{
		Auth: config.Auth{
			WaiterTokens:  []string{"waiter-token"},
			CashierTokens: []string{"cashier-token"},
		},
	})
}

func TestResolve(t *testing.T) {
	resolver := testResolver()

	tests := []struct {
		name     string
		token    string
		wantRole Role
		wantErr  bool
	}{
		{name: "waiter token", token: "waiter-token", wantRole: RoleWaiter},
		{name: "cashier token", token: "cashier-token", wantRole: RoleCashier},
		{name: "unknown token", token: "nope", wantErr: true},
		{name: "empty token", token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal, err := resolver.Resolve(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var appErr *errorbank.AppError
				if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindUnauthenticated {
					t.Errorf("expected unauthenticated error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if principal.Role != tt.wantRole {
				t.Errorf("role = %s, want %s", principal.Role, tt.wantRole)
			}
		})
	}
}

func TestRoleCapabilities(t *testing.T) {
	waiter := Principal{Role: RoleWaiter}
	cashier := Principal{Role: RoleCashier}
	nobody := Principal{}

	if !waiter.CanMutateOrders() || !waiter.CanViewOrders() {
		t.Error("waiter should mutate and view")
	}
	if cashier.CanMutateOrders() {
		t.Error("cashier must not mutate")
	}
	if !cashier.CanViewOrders() {
		t.Error("cashier should view")
	}
	if nobody.CanMutateOrders() || nobody.CanViewOrders() {
		t.Error("empty principal should have no capabilities")
	}
}

func TestMiddleware(t *testing.T) {
	resolver := testResolver()
	e := echo.New()

	handler := Middleware(resolver)(func(c echo.Context) error {
		principal, err := FromContext(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, string(principal.Role))
	})

	t.Run("valid token reaches handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer waiter-token")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(c); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if rec.Body.String() != "waiter" {
			t.Errorf("body = %s, want waiter", rec.Body.String())
		}
	})

	rejected := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "bare token without scheme", header: "waiter-token"},
		{name: "wrong scheme", header: "Basic waiter-token"},
		{name: "scheme without token", header: "Bearer "},
	}
	for _, tt := range rejected {
		t.Run(tt.name+" rejected", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			var appErr *errorbank.AppError
			if !errors.As(err, &appErr) || appErr.StatusCode() != http.StatusUnauthorized {
				t.Errorf("expected 401 AppError, got %v", err)
			}
		})
	}
}

package food

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/dto"
	"github.com/mesa-labs/mesa/pkg/errorbank"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain decimal", raw: "12.99", want: "12.99"},
		{name: "integer", raw: "5", want: "5.00"},
		{name: "zero", raw: "0", want: "0.00"},
		{name: "negative", raw: "-1.00", wantErr: true},
		{name: "not a number", raw: "twelve", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := parsePrice(tt.raw)
			if tt.wantErr {
				var appErr *errorbank.AppError
				if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindUnprocessableEntity {
					t.Errorf("expected unprocessable error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePrice() error = %v", err)
			}
			if got := price.StringFixed(2); got != tt.want {
				t.Errorf("price = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCreateRequiresWaiterRole(t *testing.T) {
	svc := &Service{logger: zap.NewNop()}
	cashier := auth.Principal{Role: auth.RoleCashier}

	_, err := svc.Create(context.Background(), cashier, dto.CreateFoodRequest{
		Name: "Pad Thai", Price: "11.50", Type: "food",
	}, nil)

	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestCreateValidatesPayload(t *testing.T) {
	svc := &Service{logger: zap.NewNop()}
	waiter := auth.Principal{Role: auth.RoleWaiter}

	tests := []struct {
		name string
		req  dto.CreateFoodRequest
	}{
		{name: "missing name", req: dto.CreateFoodRequest{Price: "9.99", Type: "food"}},
		{name: "bad type", req: dto.CreateFoodRequest{Name: "Soup", Price: "9.99", Type: "dessert"}},
		{name: "missing price", req: dto.CreateFoodRequest{Name: "Soup", Type: "food"}},
		{name: "negative price", req: dto.CreateFoodRequest{Name: "Soup", Price: "-2", Type: "food"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), waiter, tt.req, nil)
			var appErr *errorbank.AppError
			if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindUnprocessableEntity {
				t.Errorf("expected unprocessable, got %v", err)
			}
		})
	}
}

package dto

import (
	"errors"
	"testing"

	"github.com/mesa-labs/mesa/pkg/errorbank"
)

func fieldErrors(t *testing.T, err error) map[string]any {
	t.Helper()
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Kind() != errorbank.KindUnprocessableEntity {
		t.Fatalf("kind = %s, want unprocessable_entity", appErr.Kind())
	}
	return appErr.Details()
}

func TestValidateOpenOrderRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       OpenOrderRequest
		wantField string
	}{
		{
			name: "valid request",
			req: OpenOrderRequest{
				TableID: 1,
				Items:   []OrderItemInput{{FoodID: 10, Quantity: 2}},
			},
		},
		{
			name: "missing table",
			req: OpenOrderRequest{
				Items: []OrderItemInput{{FoodID: 10, Quantity: 2}},
			},
			wantField: "table_id",
		},
		{
			name:      "empty items",
			req:       OpenOrderRequest{TableID: 1, Items: []OrderItemInput{}},
			wantField: "items",
		},
		{
			name: "zero quantity",
			req: OpenOrderRequest{
				TableID: 1,
				Items:   []OrderItemInput{{FoodID: 10, Quantity: 0}},
			},
			wantField: "items[0].quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			details := fieldErrors(t, err)
			if _, ok := details[tt.wantField]; !ok {
				t.Errorf("details = %v, want field %q", details, tt.wantField)
			}
		})
	}
}

func TestValidateUpdateStatusRequest(t *testing.T) {
	if err := Validate(UpdateStatusRequest{Status: "closed"}); err != nil {
		t.Errorf("closed should validate, got %v", err)
	}
	if err := Validate(UpdateStatusRequest{Status: "paused"}); err == nil {
		t.Error("arbitrary status should be rejected")
	}
	if err := Validate(UpdateStatusRequest{}); err == nil {
		t.Error("missing status should be rejected")
	}
}

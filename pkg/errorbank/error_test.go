package errorbank

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{name: "bad request", err: BadRequest("bad"), want: http.StatusBadRequest},
		{name: "invalid state", err: InvalidState("closed"), want: http.StatusBadRequest},
		{name: "unauthenticated", err: Unauthenticated("no token"), want: http.StatusUnauthorized},
		{name: "unauthorized", err: Unauthorized("wrong role"), want: http.StatusForbidden},
		{name: "conflict", err: Conflict("taken"), want: http.StatusConflict},
		{name: "not found", err: NotFound("missing"), want: http.StatusNotFound},
		{name: "unprocessable", err: Unprocessable("invalid"), want: http.StatusUnprocessableEntity},
		{name: "internal", err: Internal("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInternalAssignsErrorID(t *testing.T) {
	err := Internal("boom")
	if err.ErrorID() == "" {
		t.Error("internal error should carry a correlation id")
	}
	if NotFound("missing").ErrorID() != "" {
		t.Error("non-internal errors should not carry a correlation id")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("boom", WithCause(cause))
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestFrom(t *testing.T) {
	appErr := NotFound("missing")
	if got := From(appErr); got != appErr {
		t.Error("From should return the existing AppError")
	}

	plain := errors.New("oops")
	wrapped := From(plain)
	if wrapped.Kind() != KindInternal {
		t.Errorf("kind = %s, want internal", wrapped.Kind())
	}
	if !errors.Is(wrapped, plain) {
		t.Error("wrapped error should keep the cause")
	}

	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestWithFieldErrors(t *testing.T) {
	err := Unprocessable("validation failed", WithFieldErrors(map[string]string{
		"table_id": "table_id is required",
	}))
	if err.Details()["table_id"] != "table_id is required" {
		t.Errorf("details = %v", err.Details())
	}
}

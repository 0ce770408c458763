package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "without wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
			},
			want: "TEST_ERROR: something went wrong",
		},
		{
			name: "with wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
				Err:     errors.New("underlying cause"),
			},
			want: "TEST_ERROR: something went wrong (underlying cause)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &APIError{Code: "TEST", Message: "test", Err: underlying}

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}

	errNoWrap := &APIError{Code: "TEST", Message: "test"}
	if errNoWrap.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no wrapped error")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantCode   string
		wantStatus int
		sentinel   error
	}{
		{"not found", NewNotFoundError("cart"), "NOT_FOUND", 404, ErrNotFound},
		{"validation", NewValidationError("rating", "must be between 1 and 5"), "VALIDATION_ERROR", 400, ErrInvalidRequest},
		{"unauthorized", NewUnauthorizedError("no session"), "UNAUTHORIZED", 401, ErrUnauthorized},
		{"forbidden", NewForbiddenError("verification required"), "FORBIDDEN", 403, ErrForbidden},
		{"upstream", NewUpstreamError(errors.New("connection refused")), "UPSTREAM_ERROR", 502, ErrUpstreamError},
		{"upstream status", NewUpstreamStatusError(422, "out of stock"), "UPSTREAM_REJECTED", 422, ErrUpstreamError},
		{"rate limited", NewRateLimitError("commerce API"), "RATE_LIMITED", 429, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.wantStatus)
			}
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("error should wrap sentinel %v", tt.sentinel)
			}
		})
	}
}

func TestUpstreamStatusError_PreservesMessage(t *testing.T) {
	err := NewUpstreamStatusError(400, "this product is out of stock")
	if err.Message != "this product is out of stock" {
		t.Errorf("Message = %q, want upstream message preserved", err.Message)
	}
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NewUnauthorizedError("token expired"))

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As should find APIError through fmt.Errorf wrapping")
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
}

package model

import (
	"errors"
	"testing"
)

func TestNormalize_EmptyBodySuccess(t *testing.T) {
	// Delete operations upstream routinely return 200 with no body.
	// This must normalize to success, never an error.
	env, err := Normalize(200, nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v, want nil", err)
	}
	if env.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", env.Status, StatusSuccess)
	}
	if env.Message == "" {
		t.Error("synthesized envelope should carry a message")
	}
}

func TestNormalize_WhitespaceBodySuccess(t *testing.T) {
	env, err := Normalize(204, []byte("  \n"))
	if err != nil {
		t.Fatalf("Normalize() error = %v, want nil", err)
	}
	if env.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", env.Status, StatusSuccess)
	}
}

func TestNormalize_NonJSONBodySuccess(t *testing.T) {
	env, err := Normalize(200, []byte("<html>ok</html>"))
	if err != nil {
		t.Fatalf("Normalize() error = %v, want nil", err)
	}
	if env.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", env.Status, StatusSuccess)
	}
	if env.Message == "" {
		t.Error("non-JSON success should fall back to synthesized message")
	}
}

func TestNormalize_SuccessWithData(t *testing.T) {
	body := []byte(`{"status":"success","data":{"_id":"c1","totalCartPrice":450}}`)

	env, err := Normalize(200, body)
	if err != nil {
		t.Fatalf("Normalize() error = %v, want nil", err)
	}

	var cart Cart
	if err := env.DecodeData(&cart); err != nil {
		t.Fatalf("DecodeData() error = %v", err)
	}
	if cart.ID != "c1" {
		t.Errorf("cart ID = %q, want %q", cart.ID, "c1")
	}
	if cart.TotalCartPrice != 450 {
		t.Errorf("totalCartPrice = %v, want 450", cart.TotalCartPrice)
	}
}

func TestNormalize_SuccessTopLevelPayload(t *testing.T) {
	// Some endpoints return the payload at the top level with no "data" key.
	body := []byte(`{"_id":"a1","city":"Cairo"}`)

	env, err := Normalize(201, body)
	if err != nil {
		t.Fatalf("Normalize() error = %v, want nil", err)
	}

	var addr Address
	if err := env.DecodeData(&addr); err != nil {
		t.Fatalf("DecodeData() error = %v", err)
	}
	if addr.City != "Cairo" {
		t.Errorf("city = %q, want %q", addr.City, "Cairo")
	}
}

func TestNormalize_FailureMessageExtraction(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		wantMsg string
	}{
		{
			name:    "top-level message",
			status:  400,
			body:    []byte(`{"message":"this product is out of stock"}`),
			wantMsg: "this product is out of stock",
		},
		{
			name:    "nested errors.message",
			status:  400,
			body:    []byte(`{"errors":{"message":"invalid product id"}}`),
			wantMsg: "invalid product id",
		},
		{
			name:    "empty failure body",
			status:  500,
			body:    nil,
			wantMsg: "request failed, please try again",
		},
		{
			name:    "non-JSON failure body",
			status:  502,
			body:    []byte("Bad Gateway"),
			wantMsg: "request failed, please try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.status, tt.body)
			if err == nil {
				t.Fatal("Normalize() should return error for failure status")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error should be *APIError, got %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d (upstream status propagated)", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestNormalize_RateLimit(t *testing.T) {
	_, err := Normalize(429, []byte(`{"message":"too many requests"}`))
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("429 should map to ErrRateLimited, got %v", err)
	}
}

func TestDecodeData_NoData(t *testing.T) {
	env := &Envelope{Status: StatusSuccess, Message: "ok"}

	var cart Cart
	err := env.DecodeData(&cart)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("DecodeData on empty data should be a validation error, got %v", err)
	}
}

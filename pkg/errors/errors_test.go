package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("sheet append failed")
	wrapped := Wrap(originalErr, CodeSheets, "could not save", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("errors.Is should see through AppError")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeRateLimited,
				Message: "slow down",
			},
			expected: "rate_limit_exceeded: slow down",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeSheets,
				Message: "could not save",
				Err:     errors.New("quota exceeded"),
			},
			expected: "google_sheets_error: could not save (caused by: quota exceeded)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"validation", Validation("bad", nil), http.StatusUnprocessableEntity, CodeValidation},
		{"sheets", Sheets("bad", nil), http.StatusInternalServerError, CodeSheets},
		{"internal", Internal("bad", nil), http.StatusInternalServerError, CodeInternal},
		{"rate limited", RateLimited("bad"), http.StatusTooManyRequests, CodeRateLimited},
		{"media type", UnsupportedMediaType("bad"), http.StatusUnsupportedMediaType, CodeUnsupportedMediaType},
		{"too large", RequestTooLarge("bad"), http.StatusRequestEntityTooLarge, CodeRequestTooLarge},
		{"timeout", Timeout("bad"), http.StatusServiceUnavailable, CodeTimeout},
		{"not found", NotFound("bad"), http.StatusNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("passes app errors through wrapping", func(t *testing.T) {
		original := RateLimited("slow down")
		wrapped := fmt.Errorf("middleware: %w", original)

		if got := AsAppError(wrapped); got != original {
			t.Errorf("AsAppError should unwrap to the original AppError")
		}
		if !IsAppError(wrapped) {
			t.Errorf("IsAppError should be true for wrapped AppError")
		}
	})

	t.Run("hides unknown errors behind internal error", func(t *testing.T) {
		got := AsAppError(errors.New("secret detail"))

		if got.Code != CodeInternal {
			t.Errorf("expected %s, got %s", CodeInternal, got.Code)
		}
		if got.Message == "secret detail" {
			t.Errorf("internal detail must not leak into the message")
		}
	})
}

func TestResponse(t *testing.T) {
	details := map[string][]string{"phone": {"Phone number must be in Ghana format"}}
	resp := Validation("Validation failed", details).Response()

	if resp.Success {
		t.Errorf("error responses must have success=false")
	}
	if resp.Error != CodeValidation {
		t.Errorf("expected error tag %s, got %s", CodeValidation, resp.Error)
	}
	if len(resp.Errors["phone"]) != 1 {
		t.Errorf("expected field errors to be carried, got %v", resp.Errors)
	}
}

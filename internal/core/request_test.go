// AngelaMos | 2026
// request_test.go

package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		status int
	}{
		{"valid", `{"email":"a@x.com"}`, true, http.StatusOK},
		{"malformed", `{"email":`, false, http.StatusBadRequest},
		{"fails validation", `{"email":"nope"}`, false, http.StatusBadRequest},
		{"too large", `{"email":"` + strings.Repeat("a", maxBodyBytes) + `"}`, false, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst signup
			if got := DecodeJSON(rec, req, &dst); got != tt.ok {
				t.Fatalf("DecodeJSON = %v, want %v", got, tt.ok)
			}
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

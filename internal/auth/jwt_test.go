// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/config"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(config.JWTConfig{
		Secret:     testSecret,
		Expiration: ttl,
		Issuer:     "rankflow-test",
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestIssueAndValidate(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, expiresAt, err := m.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.IsImpersonation() {
		t.Error("plain token reported as impersonation")
	}
	if !claims.ExpiresAt.Equal(expiresAt) {
		t.Errorf("exp = %s, want %s", claims.ExpiresAt, expiresAt)
	}
}

func TestImpersonationClaim(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, _, err := m.Issue("target-1", "admin-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !claims.IsImpersonation() || claims.OriginalUserID != "admin-1" {
		t.Errorf("claims = %+v, want impersonation by admin-1", claims)
	}
}

func TestValidateFailures(t *testing.T) {
	m := newTestManager(t, time.Hour)
	token, _, err := m.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewJWTManager(config.JWTConfig{
		Secret:     strings.Repeat("z", 32),
		Expiration: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	foreign, _, err := other.Issue("user-1", "")
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	promoted, _, err := m.Issue("user-2", "")
	if err != nil {
		t.Fatal(err)
	}
	swapped := parts[0] + "." + strings.Split(promoted, ".")[1] + "." + parts[2]

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", core.ErrTokenMalformed},
		{"empty", "", core.ErrTokenMalformed},
		{"other secret", foreign, core.ErrTokenSignature},
		{"tampered signature", tampered, core.ErrTokenSignature},
		{"swapped payload", swapped, core.ErrTokenSignature},
		{"missing signature", parts[0] + "." + parts[1], core.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.Validate(tt.token)
			if claims != nil {
				t.Fatalf("Validate returned claims %+v for a rejected token", claims)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateExpired(t *testing.T) {
	m := newTestManager(t, time.Hour)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.WithClock(func() time.Time { return start })

	token, _, err := m.Issue("user-1", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.WithClock(func() time.Time { return start.Add(59 * time.Minute) })
	if _, err := m.Validate(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	m.WithClock(func() time.Time { return start.Add(61 * time.Minute) })
	if _, err := m.Validate(token); !errors.Is(err, core.ErrTokenExpired) {
		t.Fatalf("Validate = %v, want ErrTokenExpired", err)
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager(config.JWTConfig{Expiration: time.Hour}); err == nil {
		t.Fatal("empty secret should be rejected")
	}
}

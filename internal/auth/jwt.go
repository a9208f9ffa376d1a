// AngelaMos | 2026
// jwt.go

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/agenciasuportapoio350-spec/part2/internal/config"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

const claimOriginalUserID = "original_user_id"

// SessionClaims is the validated content of a session token.
type SessionClaims struct {
	Subject        string
	OriginalUserID string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

func (c SessionClaims) IsImpersonation() bool {
	return c.OriginalUserID != ""
}

// JWTManager issues and validates HS256 session tokens. Tokens carry
// only ids; role and status are always re-read from the user store.
type JWTManager struct {
	key    jwk.Key
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import secret: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	ttl := cfg.Expiration
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &JWTManager{
		key:    key,
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source, used by tests to move past expiry.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for userID. A non-empty originalUserID marks the
// token as an impersonation session that can later be reverted.
func (m *JWTManager) Issue(
	userID, originalUserID string,
) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("issue token: empty subject")
	}

	now := m.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	builder := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Subject(userID).
		IssuedAt(now).
		Expiration(expiresAt)
	if m.issuer != "" {
		builder = builder.Issuer(m.issuer)
	}
	if originalUserID != "" {
		builder = builder.Claim(claimOriginalUserID, originalUserID)
	}

	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), expiresAt, nil
}

// Validate parses and verifies the token once, then checks expiry
// against the manager's clock. A bad signature and a malformed token are
// reported with distinct sentinels.
func (m *JWTManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(false),
	)
	if err != nil {
		if errors.Is(err, jws.VerifyError()) {
			return nil, fmt.Errorf("validate token: %w", core.ErrTokenSignature)
		}
		return nil, fmt.Errorf("validate token: %w", core.ErrTokenMalformed)
	}

	expiresAt, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf(
			"validate token: missing exp: %w",
			core.ErrTokenMalformed,
		)
	}
	if m.now().After(expiresAt) {
		return nil, fmt.Errorf("validate token: %w", core.ErrTokenExpired)
	}

	claims := &SessionClaims{ExpiresAt: expiresAt}

	if sub, ok := token.Subject(); ok {
		claims.Subject = sub
	}
	if iat, ok := token.IssuedAt(); ok {
		claims.IssuedAt = iat
	}

	var original string
	if err := token.Get(claimOriginalUserID, &original); err == nil {
		claims.OriginalUserID = original
	}

	return claims, nil
}

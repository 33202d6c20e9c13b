// AngelaMos | 2026
// token.go

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/blog-api/internal/config"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

const payloadClaim = "data"

// Payload keys carried by each token intent.
const (
	KeyConfirm     = "confirm"
	KeyReset       = "reset"
	KeyChangeEmail = "change_email"
	KeyNewEmail    = "new_email"
	KeyID          = "id"
)

// Payload is the string map signed into a token.
type Payload map[string]string

// TokenManager issues and verifies HS256 tokens under the process secret.
// It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	key    jwk.Key
	issuer string
	now    func() time.Time
}

func NewTokenManager(cfg config.TokenConfig) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("token secret key is empty")
	}

	key, err := jwk.Import([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("import secret key: %w", err)
	}

	return &TokenManager{
		key:    key,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of m that reads the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

// Issue signs payload. A zero ttl produces a token that never expires.
func (m *TokenManager) Issue(payload Payload, ttl time.Duration) (string, error) {
	now := m.now().UTC().Truncate(time.Second)

	builder := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.issuer).
		IssuedAt(now).
		Claim(payloadClaim, map[string]string(payload))

	if ttl > 0 {
		builder = builder.Expiration(now.Add(ttl))
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// Verify returns the payload of a well-formed, correctly signed and
// unexpired token. Every failure wraps core.ErrTokenExpired or
// core.ErrTokenInvalid.
func (m *TokenManager) Verify(tokenString string) (Payload, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("verify token: empty: %w", core.ErrTokenInvalid)
	}

	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		if isTokenExpiredError(err) || m.expired(tokenString) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var raw map[string]any
	if err := token.Get(payloadClaim, &raw); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing payload: %w",
			core.ErrTokenInvalid,
		)
	}

	payload := make(Payload, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf(
				"verify token: payload field %q is not a string: %w",
				k,
				core.ErrTokenInvalid,
			)
		}
		payload[k] = s
	}

	return payload, nil
}

// expired reports whether a correctly signed token failed only because its
// expiry has passed.
func (m *TokenManager) expired(tokenString string) bool {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(false),
	)
	if err != nil {
		return false
	}

	exp, ok := token.Expiration()
	if !ok || exp.IsZero() {
		return false
	}

	return !m.now().Before(exp)
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
)

var (
	// ErrTokenInvalid indicates the session token is malformed or its signature does not verify.
	ErrTokenInvalid = errors.New("security: invalid session token")
	// ErrTokenExpired indicates the session token's expiry claim has passed.
	ErrTokenExpired = errors.New("security: session token expired")
)

// SessionClaims is the wire shape of a signed session token: the session
// identity plus issuance metadata and a standard expiry claim.
type SessionClaims struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	IsAlive   bool      `json:"is_alive"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates session-bearing JWTs. The signing key is
// the hex SHA-256 of the configured secret, matching historical token issuance
// so existing deployments keep their signatures.
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenManager derives the signing key and fixes the expiry window.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("security: signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("security: token ttl must be positive")
	}

	sum := sha256.Sum256([]byte(secret))
	return &TokenManager{
		key: []byte(hex.EncodeToString(sum[:])),
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic tests.
func (m *TokenManager) WithClock(clock func() time.Time) *TokenManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token carrying the session identity. Returns the encoded
// token and its expiry moment.
func (m *TokenManager) Issue(session domain.Session) (string, time.Time, error) {
	if session.ID == "" {
		return "", time.Time{}, fmt.Errorf("security: session id is required")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := SessionClaims{
		UserID:    session.UserID,
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
		IsAlive:   session.IsAlive,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse validates signature and expiry and returns the embedded claims.
// Expired or badly signed tokens are rejected here, before any session lookup.
func (m *TokenManager) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

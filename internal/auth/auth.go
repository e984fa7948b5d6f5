// Package auth issues and validates the bearer tokens that guard the admin
// API.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RoleAdmin is the only role the service issues.
	RoleAdmin = "admin"

	defaultIssuer = "freefirelikes"
	defaultTTL    = 12 * time.Hour
)

var (
	// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrBadCredentials is returned when the admin code does not match.
	ErrBadCredentials = errors.New("invalid admin code")
	// ErrDisabled means no admin code or signing secret is configured.
	ErrDisabled = errors.New("admin access disabled")
)

// Claims are the JWT claims of an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies admin tokens with HS256.
type Manager struct {
	secret    []byte
	adminCode string
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// NewManager builds a Manager. ttl <= 0 uses a 12h default.
func NewManager(secret, adminCode string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		secret:    []byte(secret),
		adminCode: adminCode,
		issuer:    defaultIssuer,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Enabled reports whether admin login is possible.
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0 && m.adminCode != ""
}

// Login exchanges the admin code for a signed token.
func (m *Manager) Login(code string) (token string, expiresAt time.Time, err error) {
	if !m.Enabled() {
		return "", time.Time{}, ErrDisabled
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(m.adminCode)) != 1 {
		return "", time.Time{}, ErrBadCredentials
	}
	now := m.now()
	expiresAt = now.Add(m.ttl)
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses a token and checks it carries the admin role.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

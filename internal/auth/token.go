package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tutor-service/internal/models"
)

const (
	purposeAccess = "access"
	purposeReset  = "reset"
	issuer        = "tutor-service"
)

var ErrInvalidToken = errors.New("invalid token")

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID    uuid.UUID
	Role      models.Role
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

func (p Principal) IsTutor() bool {
	return p.Role == models.RoleTutor
}

func (p Principal) IsStudent() bool {
	return p.Role == models.RoleStudent
}

type Claims struct {
	jwt.RegisteredClaims
	Role    models.Role `json:"role"`
	Email   string      `json:"email"`
	Purpose string      `json:"purpose"`
}

type Manager struct {
	secret   []byte
	tokenTTL time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

func NewManager(secret string, tokenTTL, resetTTL time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue signs an access token for the user.
func (m *Manager) Issue(u *models.User) (string, time.Time, error) {
	return m.sign(u, purposeAccess, m.tokenTTL)
}

// IssueReset signs a short lived password reset token.
func (m *Manager) IssueReset(u *models.User) (string, time.Time, error) {
	return m.sign(u, purposeReset, m.resetTTL)
}

func (m *Manager) Parse(token string) (Principal, error) {
	return m.parse(token, purposeAccess)
}

func (m *Manager) ParseReset(token string) (Principal, error) {
	return m.parse(token, purposeReset)
}

func (m *Manager) sign(u *models.User, purpose string, ttl time.Duration) (string, time.Time, error) {
	const op = "auth.Manager.sign"

	now := m.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:    u.Role,
		Email:   u.Email,
		Purpose: purpose,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt.Truncate(time.Second), nil
}

func (m *Manager) parse(token, purpose string) (Principal, error) {
	const op = "auth.Manager.parse"

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	if claims.Purpose != purpose {
		return Principal{}, fmt.Errorf("%s: %w: unexpected purpose %q", op, ErrInvalidToken, claims.Purpose)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("%s: %w: bad subject", op, ErrInvalidToken)
	}

	return Principal{
		UserID:    userID,
		Role:      claims.Role,
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TokenTTL is the lifetime of access tokens.
func (m *Manager) TokenTTL() time.Duration {
	return m.tokenTTL
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenLifetime = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated identity extracted from a token.
type Claims struct {
	UserID string
	Email  string
}

// Manager issues and verifies HS256 access tokens.
type Manager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewManager(secret string, lifetime time.Duration) *Manager {
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}
	return &Manager{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// GenerateToken creates a signed JWT with standard claims.
func (m *Manager) GenerateToken(userID, email string) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   now.Add(m.lifetime).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func (m *Manager) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only HMAC allowed
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return &Claims{UserID: sub, Email: email}, nil
}

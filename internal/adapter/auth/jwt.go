// Package auth provides bearer token issuing and password hashing.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// Claims carries the user id and role of a token holder.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a JWT service. ttl <= 0 defaults to 24h.
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("op=auth.new_jwt: secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for u.
func (s *JWTService) Issue(u domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("op=auth.issue: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its user id. Every failure wraps
// domain.ErrUnauthorized.
func (s *JWTService) Validate(token string) (int64, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: empty token", domain.ErrUnauthorized)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, fmt.Errorf("%w: malformed token", domain.ErrUnauthorized)
		default:
			return 0, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
	}
	if !parsed.Valid || claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	return claims.UserID, nil
}

package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-auth-portal/internal/model"
)

// TokenClaims is the identity embedded in a new session token.
type TokenClaims struct {
	Subject  string
	Email    string
	Username string
}

type sessionClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *TokenService) GenerateToken(claims TokenClaims) (string, error) {
	now := s.now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email:    claims.Email,
		Username: claims.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	return token.SignedString(s.secret)
}

// VerifyToken checks signature and expiry. Every failure is reported as
// model.ErrInvalidToken.
func (s *TokenService) VerifyToken(tokenString string) (*model.AuthClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, model.ErrInvalidToken
	}

	return toAuthClaims(claims), nil
}

// DecodeToken reads the claims without checking the signature. It must not be
// used to authenticate a request.
func (s *TokenService) DecodeToken(tokenString string) *model.AuthClaims {
	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return toAuthClaims(claims)
}

func toAuthClaims(c *sessionClaims) *model.AuthClaims {
	out := &model.AuthClaims{
		UserID:   c.Subject,
		Email:    c.Email,
		Username: c.Username,
		TokenID:  c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}

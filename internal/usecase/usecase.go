package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"go-auth-portal/internal/service"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain string, encoded string) bool
}

type TokenIssuer interface {
	GenerateToken(claims service.TokenClaims) (string, error)
}

// TokenBlacklist revokes a session token before its natural expiry.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, token string) error
}

type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

package service

import (
	"context"
	"log/slog"
	"time"

	"go-auth-portal/internal/model"
	"go-auth-portal/internal/repository"
)

type tokenVerifier interface {
	VerifyToken(tokenString string) (*model.AuthClaims, error)
}

// BlacklistService revokes session tokens before their natural expiry. Entries
// are keyed by the token's jti and kept only until the token would have
// expired anyway.
type BlacklistService struct {
	tokens  tokenVerifier
	revoked repository.RevocationRepository
}

func NewBlacklistService(tokens tokenVerifier, revoked repository.RevocationRepository) *BlacklistService {
	return &BlacklistService{tokens: tokens, revoked: revoked}
}

// BlacklistToken revokes a token. Tokens that no longer verify are already
// unusable and are ignored.
func (s *BlacklistService) BlacklistToken(ctx context.Context, token string) error {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil || claims.TokenID == "" {
		return nil
	}

	return s.revoked.Revoke(ctx, claims.TokenID, claims.UserID, claims.ExpiresAt)
}

func (s *BlacklistService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return s.revoked.IsRevoked(ctx, tokenID)
}

// StartCleanupTicker purges expired revocations on every tick until ctx is cancelled.
func (s *BlacklistService) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *BlacklistService) sweep(ctx context.Context) {
	removed, err := s.revoked.CleanExpired(ctx)
	if err != nil {
		slog.Warn("revocation sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("revocation sweep", "removed", removed)
	}
}

package usecase

import (
	"context"
	"log/slog"
	"strings"

	"go-auth-portal/internal/model"
)

type LogoutUseCase struct {
	blacklist TokenBlacklist
}

func NewLogoutUseCase(blacklist TokenBlacklist) *LogoutUseCase {
	return &LogoutUseCase{blacklist: blacklist}
}

// Execute revokes the token if one is given. Logout cannot fail from the
// caller's point of view; revocation errors are only logged.
func (uc *LogoutUseCase) Execute(ctx context.Context, token string) model.LogoutResult {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.LogoutResult{Success: true}
	}

	if err := uc.blacklist.BlacklistToken(ctx, token); err != nil {
		slog.Warn("token revocation failed", "error", err)
	}

	return model.LogoutResult{Success: true}
}

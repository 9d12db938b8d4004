package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go-auth-portal/internal/model"
	"go-auth-portal/internal/repository"
	"go-auth-portal/internal/service"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type LoginUseCase struct {
	users     repository.CredentialRepository
	passwords PasswordHasher
	tokens    TokenIssuer
}

func NewLoginUseCase(users repository.CredentialRepository, passwords PasswordHasher, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{users: users, passwords: passwords, tokens: tokens}
}

// Execute authenticates a user by email or username. Unknown identifiers and
// wrong passwords both yield model.ErrInvalidCredentials.
func (uc *LoginUseCase) Execute(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	identifier := strings.TrimSpace(req.EmailOrUsername)
	if identifier == "" || req.Password == "" {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	user, err := uc.lookup(ctx, identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.LoginResult{}, err
	}

	if !uc.passwords.Compare(req.Password, user.PasswordHash) {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return model.LoginResult{}, model.ErrAccountNotActive
	}

	token, err := uc.tokens.GenerateToken(service.TokenClaims{
		Subject:  user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("sign session token: %w", err)
	}

	return model.LoginResult{
		Token: token,
		User:  model.LoginUser{ID: user.ID, Email: user.Email, Username: user.Username},
	}, nil
}

func (uc *LoginUseCase) lookup(ctx context.Context, identifier string) (model.User, error) {
	if !emailPattern.MatchString(identifier) {
		return uc.users.FindByUsername(ctx, identifier)
	}

	user, err := uc.users.FindByEmail(ctx, identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		// usernames may themselves look like addresses
		return uc.users.FindByUsername(ctx, identifier)
	}
	return user, err
}

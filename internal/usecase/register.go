package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-auth-portal/internal/model"
	"go-auth-portal/internal/repository"
)

type RegisterUseCase struct {
	users     repository.CredentialRepository
	passwords PasswordHasher
	ids       IDGenerator
	now       func() time.Time
}

func NewRegisterUseCase(users repository.CredentialRepository, passwords PasswordHasher, ids IDGenerator) *RegisterUseCase {
	return &RegisterUseCase{users: users, passwords: passwords, ids: ids, now: nowUTC}
}

// Execute creates an inactive, unverified account. Email and username
// uniqueness are both checked before anything is written.
func (uc *RegisterUseCase) Execute(ctx context.Context, req model.RegisterRequest) (model.RegisterResult, error) {
	email := model.NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || strings.TrimSpace(req.Password) == "" {
		return model.RegisterResult{}, model.ErrInvalidInput
	}

	emailTaken, err := uc.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.RegisterResult{}, err
	}
	if emailTaken {
		return model.RegisterResult{}, model.ErrEmailExists
	}

	usernameTaken, err := uc.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.RegisterResult{}, err
	}
	if usernameTaken {
		return model.RegisterResult{}, model.ErrUsernameExists
	}

	hash, err := uc.passwords.Hash(req.Password)
	if err != nil {
		return model.RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := uc.now()
	user := model.User{
		ID:           uc.ids.NewID(),
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.users.Create(ctx, user); err != nil {
		return model.RegisterResult{}, err
	}

	return model.RegisterResult{User: model.RegisteredUser{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Confirmed: user.IsVerified,
	}}, nil
}

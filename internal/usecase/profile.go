package usecase

import (
	"context"
	"strings"
	"time"

	"go-auth-portal/internal/model"
	"go-auth-portal/internal/repository"
)

// ProfileUseCase covers the account operations available once a user is
// authenticated, plus activation for operators.
type ProfileUseCase struct {
	users repository.CredentialRepository
	now   func() time.Time
}

func NewProfileUseCase(users repository.CredentialRepository) *ProfileUseCase {
	return &ProfileUseCase{users: users, now: nowUTC}
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// UpdateProfile applies the non-nil fields of req. Emails cannot be changed.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.PublicUser, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return model.PublicUser{}, model.ErrInvalidInput
		}
		if !strings.EqualFold(username, user.Username) {
			taken, err := uc.users.ExistsByUsername(ctx, username)
			if err != nil {
				return model.PublicUser{}, err
			}
			if taken {
				return model.PublicUser{}, model.ErrUsernameExists
			}
		}
		user.Username = username
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}

	user.UpdatedAt = uc.now()
	if err := uc.users.Update(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

func (uc *ProfileUseCase) DeleteAccount(ctx context.Context, userID string) error {
	return uc.users.Delete(ctx, userID)
}

func (uc *ProfileUseCase) ListUsers(ctx context.Context) (model.UserList, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return model.UserList{}, err
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return model.UserList{Users: out}, nil
}

// ActivateUser marks an account active and verified so it can log in.
// Activating an already active account is a no-op.
func (uc *ProfileUseCase) ActivateUser(ctx context.Context, email string) (model.PublicUser, error) {
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return model.PublicUser{}, err
	}
	if user.IsActive && user.IsVerified {
		return user.Public(), nil
	}

	user.IsActive = true
	user.IsVerified = true
	user.UpdatedAt = uc.now()
	if err := uc.users.Update(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

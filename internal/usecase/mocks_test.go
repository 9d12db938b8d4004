package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-auth-portal/internal/model"
	"go-auth-portal/internal/service"
)

type mockCredentialRepository struct {
	mock.Mock
}

func (m *mockCredentialRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockCredentialRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockCredentialRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockCredentialRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockCredentialRepository) Create(ctx context.Context, u model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockCredentialRepository) Update(ctx context.Context, u model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockCredentialRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Compare(plain string, encoded string) bool {
	return m.Called(plain, encoded).Bool(0)
}

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) GenerateToken(claims service.TokenClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

type mockTokenBlacklist struct {
	mock.Mock
}

func (m *mockTokenBlacklist) BlacklistToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type fixedID string

func (f fixedID) NewID() string {
	return string(f)
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-portal/internal/model"
)

var userColumnNames = []string{
	"id", "email", "username", "first_name", "last_name", "password_hash",
	"is_active", "is_verified", "created_at", "updated_at",
}

func newMockUserRepository(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)

	return NewUserRepository(mock), mock
}

func sampleUserRow(now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(userColumnNames).
		AddRow("user-1", "jdoe@example.com", "jdoe", "John", "Doe", "$argon2id$hash", true, false, now, now)
}

func TestUserRepository_FindByEmailNormalizes(t *testing.T) {
	repo, mock := newMockUserRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE lower\(email\) = \$1`).
		WithArgs("jdoe@example.com").
		WillReturnRows(sampleUserRow(now))

	u, err := repo.FindByEmail(context.Background(), "  JDoe@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "jdoe", u.Username)
	assert.True(t, u.IsActive)
	assert.Equal(t, "$argon2id$hash", u.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindMissingReturnsNotFound(t *testing.T) {
	repo, mock := newMockUserRepository(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE lower\(username\) = lower\(\$1\)`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, model.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindWrapsDriverErrors(t *testing.T) {
	repo, mock := newMockUserRepository(t)
	cause := errors.New("connection refused")

	mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnError(cause)

	_, err := repo.FindByID(context.Background(), "user-1")

	var dbErr *model.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "find user by id", dbErr.Op)
	assert.ErrorIs(t, err, cause)
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	repo, mock := newMockUserRepository(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE lower\(username\) = lower\(\$1\)\)`).
		WithArgs("jdoe").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsername(context.Background(), " jdoe ")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Now().UTC()
	user := model.User{
		ID: "user-1", Email: "JDoe@Example.com", Username: "jdoe",
		PasswordHash: "$argon2id$hash", CreatedAt: now, UpdatedAt: now,
	}

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "inserts normalized record"},
		{
			name:    "email unique violation",
			execErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			wantErr: model.ErrEmailExists,
		},
		{
			name:    "username unique violation",
			execErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"},
			wantErr: model.ErrUsernameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockUserRepository(t)

			exec := mock.ExpectExec(`INSERT INTO users`).
				WithArgs("user-1", "jdoe@example.com", "jdoe", "", "", "$argon2id$hash", false, false, now, now)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := repo.Create(context.Background(), user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdateAndDeleteMissing(t *testing.T) {
	repo, mock := newMockUserRepository(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE users`).
		WithArgs("user-1", "jdoe", "John", "", "hash", true, true, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Update(context.Background(), model.User{
		ID: "user-1", Username: "jdoe", FirstName: "John", PasswordHash: "hash",
		IsActive: true, IsVerified: true, UpdatedAt: now,
	})
	require.ErrorIs(t, err, model.ErrUserNotFound)

	err = repo.Delete(context.Background(), "user-1")
	require.ErrorIs(t, err, model.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := newMockUserRepository(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows(userColumnNames).
		AddRow("user-1", "a@example.com", "alice", "", "", "h1", true, true, now, now).
		AddRow("user-2", "b@example.com", "bob", "", "", "h2", false, false, now, now)
	mock.ExpectQuery(`(?s)SELECT .+ FROM users ORDER BY username`).WillReturnRows(rows)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"go-auth-portal/internal/model"
)

type TokenRepository struct {
	pool dbPool
}

func NewTokenRepository(pool dbPool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Revoke records a token id as invalid. Revoking the same id twice is a no-op.
func (r *TokenRepository) Revoke(ctx context.Context, tokenID string, userID string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (jti) DO NOTHING`,
		tokenID, userID, expiresAt, nowUTC())
	if err != nil {
		return model.NewDatabaseError("revoke token", err)
	}
	return nil
}

func (r *TokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx,
		`SELECT 1 FROM revoked_tokens WHERE jti = $1`, tokenID).Scan(&one)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, model.NewDatabaseError("check revoked token", err)
	}
	return true, nil
}

func (r *TokenRepository) CleanExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, model.NewDatabaseError("clean expired revocations", err)
	}
	return tag.RowsAffected(), nil
}

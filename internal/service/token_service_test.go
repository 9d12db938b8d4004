package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-portal/internal/model"
)

func TestNewTokenServiceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(" ", time.Hour)
	require.Error(t, err)
	_, err = NewTokenService("secret", 0)
	require.Error(t, err)
}

func TestTokenGenerateAndVerify(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken(TokenClaims{Subject: "user-id", Email: "test@example.com", Username: "testuser"})
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "testuser", claims.Username)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt, time.Second)

	other, err := svc.GenerateToken(TokenClaims{Subject: "user-id"})
	require.NoError(t, err)
	otherClaims, err := svc.VerifyToken(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenID, otherClaims.TokenID)
}

func TestTokenVerifyFailures(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := NewTokenService("other-secret", time.Hour)
	require.NoError(t, err)

	expired, err := NewTokenService("test-secret", time.Minute)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	expiredToken, err := expired.GenerateToken(TokenClaims{Subject: "user-id"})
	require.NoError(t, err)
	foreignToken, err := foreign.GenerateToken(TokenClaims{Subject: "user-id"})
	require.NoError(t, err)
	noSubject, err := svc.GenerateToken(TokenClaims{})
	require.NoError(t, err)
	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-id", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":     expiredToken,
		"wrong key":   foreignToken,
		"missing sub": noSubject,
		"alg none":    noneToken,
		"garbage":     "not-a-token",
		"empty":       "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyToken(token)
			require.ErrorIs(t, err, model.ErrInvalidToken)
		})
	}
}

func TestTokenDecode(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := NewTokenService("other-secret", time.Hour)
	require.NoError(t, err)

	token, err := foreign.GenerateToken(TokenClaims{Subject: "user-id", Username: "testuser"})
	require.NoError(t, err)

	claims := svc.DecodeToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)

	assert.Nil(t, svc.DecodeToken("invalid-token"))
	assert.Nil(t, svc.DecodeToken(""))
}

//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"go-auth-portal/internal/app"
	"go-auth-portal/internal/config"
	"go-auth-portal/internal/database"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("auth_portal_test"),
		postgres.WithUsername("auth"),
		postgres.WithPassword("auth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func postgresConfig(databaseURL string) *config.Config {
	return &config.Config{
		Environment:             config.EnvDevelopment,
		ServerPort:              "0",
		StoreDriver:             config.StoreDriverPostgres,
		DatabaseURL:             databaseURL,
		DBMaxConns:              4,
		DBMinConns:              1,
		JWTSecret:               "integration-secret",
		JWTTTL:                  time.Hour,
		CookieMaxAge:            24 * time.Hour,
		RequestTimeout:          10 * time.Second,
		RevocationSweepInterval: time.Minute,
		RateLimitRPM:            1000,
		AuthRateLimitRPM:        1000,
	}
}

func newAPIServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	application, err := app.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(application.Close)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

func activate(t *testing.T, databaseURL string, email string) {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, databaseURL, 1, 0)
	require.NoError(t, err)
	defer db.Close()

	tag, err := db.Pool.Exec(ctx, `UPDATE users SET is_active = TRUE, is_verified = TRUE WHERE email = $1`, email)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()

	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

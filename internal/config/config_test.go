package config_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/himmat05/prime-deal/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test_secret")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "prime_deal")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	want := config.PostgresConfig{
		Host:            "localhost",
		Port:            "5432",
		User:            "postgres",
		Password:        "postgres",
		DBName:          "prime_deal",
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MigrationsPath:  "migrations",
	}
	if diff := cmp.Diff(want, cfg.Postgres); diff != "" {
		t.Errorf("postgres config mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, "8080", cfg.App.Port)
	require.Equal(t, 10*time.Second, cfg.App.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_REQUEST_TIMEOUT", "30s")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MAX_CONN_LIFETIME", "90m")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.App.Port)
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout)
	require.Equal(t, int32(25), cfg.Postgres.MaxConns)
	require.Equal(t, 90*time.Minute, cfg.Postgres.MaxConnLifetime)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		omit string
	}{
		{name: "jwt_secret", omit: "JWT_SECRET"},
		{name: "db_host", omit: "DB_HOST"},
		{name: "db_user", omit: "DB_USER"},
		{name: "db_password", omit: "DB_PASSWORD"},
		{name: "db_name", omit: "DB_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.omit, "")

			_, err := config.Load("")
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.omit)
		})
	}
}

func TestLoad_BadNumber(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_CONNS", "lots")

	_, err := config.Load("")
	require.Error(t, err)
}

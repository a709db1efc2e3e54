package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_SOURCE", "DATABASE_URL", "LOG_LEVEL", "GIN_MODE",
		"CORS_ALLOWED_ORIGINS", "MOCK_SEED", "MOCK_DAYS", "MOCK_CUSTOMERS", "TELEGRAM_BOT_TOKEN"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.ServerPort)
	assert.Equal(t, SourceMock, cfg.DataSource)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, uint64(42), cfg.MockSeed)
	assert.Equal(t, 90, cfg.MockDays)
	assert.Equal(t, []string{"CUST001", "CUST002", "CUST003"}, cfg.MockCustomers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_SOURCE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/txns")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MOCK_CUSTOMERS", "A, B,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerPort)
	assert.Equal(t, SourcePostgres, cfg.DataSource)
	assert.Equal(t, "postgres://u:p@db:5432/txns", cfg.DBConn)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"A", "B"}, cfg.MockCustomers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown source": {"DATA_SOURCE", "sqlite"},
		"bad port":       {"PORT", "http"},
		"port range":     {"PORT", "70000"},
		"bad seed":       {"MOCK_SEED", "-1"},
		"bad days":       {"MOCK_DAYS", "0"},
		"bad level":      {"LOG_LEVEL", "loud"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("DATA_SOURCE", "")
			t.Setenv("PORT", "")
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

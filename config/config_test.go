package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdesk/api/apperrors"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/chatdesk?sslmode=disable")
	t.Setenv("MODEL_GATEWAY_API_KEY", "test-key")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PUBLIC_BASE_URL", "https://chat.example.com/")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "google/gemini-2.5-flash", cfg.ChatModel)
	assert.Equal(t, "https://ai.gateway.lovable.dev/v1", cfg.ModelGatewayURL)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, "https://chat.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.ClickHouseEnabled())
}

func TestParseMissingGatewayKey(t *testing.T) {
	setRequired(t)
	t.Setenv("MODEL_GATEWAY_API_KEY", "")

	_, err := Parse()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConfiguration))
}

func TestParseClickHouseEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("CLICKHOUSE_HOST", "clickhouse")
	t.Setenv("CLICKHOUSE_NATIVE_PORT", "9440")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.ClickHouseEnabled())
	assert.Equal(t, 9440, cfg.ClickHouseNativePort)
}

func TestLoadMigrateNeedsOnlyDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/chatdesk?sslmode=disable")
	t.Setenv("MODEL_GATEWAY_API_KEY", "")
	t.Setenv("JWT_SECRET_KEY", "")

	cfg, err := LoadMigrate()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/chatdesk?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseClickHouseSettingsWithoutHost(t *testing.T) {
	for _, name := range []string{"CLICKHOUSE_NATIVE_PORT", "CLICKHOUSE_DB_NAME", "CLICKHOUSE_USERNAME", "CLICKHOUSE_PASSWORD"} {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("CLICKHOUSE_HOST", "")
			value := "analytics"
			if name == "CLICKHOUSE_NATIVE_PORT" {
				value = "9440"
			}
			t.Setenv(name, value)

			_, err := Parse()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindConfiguration))
			assert.Contains(t, err.Error(), name)
		})
	}
}

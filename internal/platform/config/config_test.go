package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret-at-least-32-bytes"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACTIVITIES_API_URL", "http://localhost:8000")
	t.Setenv("SESSION_SECRET", testSecret)
}

func TestLoad_AllRequiredVarsSet(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.ActivitiesAPIURL)
	assert.Equal(t, testSecret, cfg.SessionSecret)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		skipEnv string
		wantErr string
	}{
		{"missing ACTIVITIES_API_URL", "ACTIVITIES_API_URL", "ACTIVITIES_API_URL is required"},
		{"missing SESSION_SECRET", "SESSION_SECRET", "SESSION_SECRET is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.skipEnv, "")

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 3500*time.Millisecond, cfg.NoticeDuration)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.InDelta(t, 5.0, cfg.MutationRateLimit, 0.001)
	assert.Equal(t, 10, cfg.MutationRateBurst)
}

func TestLoad_CustomPortAndEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("NOTICE_DURATION", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 5*time.Second, cfg.NoticeDuration)
}

func TestLoad_InvalidAPIURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://example.com", "/activities"} {
		t.Run(raw, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("ACTIVITIES_API_URL", raw)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "ACTIVITIES_API_URL must be an absolute http(s) URL")
		})
	}
}

func TestLoad_ShortSessionSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET must be at least 32 characters")
}

func TestLoad_NonPositiveNoticeDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NOTICE_DURATION", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTICE_DURATION must be positive")
}

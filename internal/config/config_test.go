package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("CONTACT_EMAIL", "me@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://formsubmit.co/ajax/me@example.com", cfg.RelayEndpoint)
	assert.Equal(t, 10, cfg.MinMessageLength)
	assert.Equal(t, 5*time.Second, cfg.SuccessDelay)
	assert.Equal(t, time.Second, cfg.TypingIdle)
	assert.Equal(t, 5, cfg.ContactRateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.False(t, cfg.Production())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "9000")
	t.Setenv("CONTACT_EMAIL", "me@example.com")
	t.Setenv("RELAY_ENDPOINT", "https://relay.example.com/ajax/")
	t.Setenv("MIN_MESSAGE_LENGTH", "20")
	t.Setenv("SUCCESS_DELAY", "3s")
	t.Setenv("TYPING_IDLE", "2")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://relay.example.com/ajax", cfg.RelayEndpoint)
	assert.Equal(t, 20, cfg.MinMessageLength)
	assert.Equal(t, 3*time.Second, cfg.SuccessDelay)
	assert.Equal(t, 2*time.Second, cfg.TypingIdle)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("MIN_MESSAGE_LENGTH", "ten")
	t.Setenv("SUCCESS_DELAY", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MinMessageLength)
	assert.Equal(t, 5*time.Second, cfg.SuccessDelay)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "a-long-enough-production-secret")
	t.Setenv("ADMIN_USERNAME", "zach")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
}

func TestLoad_RejectsBadContactEmail(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("CONTACT_EMAIL", "not-an-address")

	_, err := Load()
	assert.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DB_NAME":                 "catchboard.db",
		"PORT":                    "8080",
		"SLACK_BOT_TOKEN":         "xoxb-test",
		"SLACK_CHANNEL_ID":        "C123",
		"TURSO_PRIMARY_URL":       "libsql://example.turso.io",
		"SUBMIT_RETRY_BASE_DELAY": "200ms",
	})
	require.NoError(t, err)

	assert.Equal(t, "catchboard.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Slack.Enabled())
	assert.Equal(t, "libsql://example.turso.io", cfg.Turso.PrimaryURL)
	assert.Equal(t, uint64(3), cfg.Retry.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.Retry.BaseDelay)
}

func TestLoadFrom_MissingRequired(t *testing.T) {
	_, err := LoadFrom(map[string]string{"PORT": "8080"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestSlackEnabled(t *testing.T) {
	assert.False(t, SlackConfig{Token: "xoxb"}.Enabled())
	assert.False(t, SlackConfig{}.Enabled())
}

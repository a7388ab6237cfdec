package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("ORDER_POLL_INTERVAL", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 5*time.Second, cfg.Admin.PollInterval)
	assert.NotEmpty(t, cfg.Backend.BaseURL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"10s", 10 * time.Second},
		{"7", 7 * time.Second},
		{"1m30s", 90 * time.Second},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		assert.Equal(t, tt.want, getDuration("TEST_DURATION", time.Minute), "value %q", tt.value)
	}
}

func TestStorageEnabled(t *testing.T) {
	assert.False(t, StorageConfig{}.Enabled())
	assert.True(t, StorageConfig{Endpoint: "https://r2", Bucket: "b", PublicBaseURL: "https://cdn"}.Enabled())
}

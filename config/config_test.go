package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("CPF_SALT", "test-salt")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigPipelineInterval(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset disables scheduling", "", 0},
		{"explicit zero disables scheduling", "0", 0},
		{"valid duration", "45m", 45 * time.Minute},
		{"daily cadence", "24h", 24 * time.Hour},
		{"garbage disables scheduling", "often", 0},
		{"negative disables scheduling", "-1h", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("PIPELINE_INTERVAL", tt.value)

			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.PipelineInterval)
		})
	}
}

func TestLoadConfigRequiresSalt(t *testing.T) {
	t.Setenv("CPF_SALT", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("CPF_SALT", "test-salt")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigMatchingDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NAME_SCORE_THRESHOLD", "")
	t.Setenv("FALLBACK_SCORE_THRESHOLD", "")
	t.Setenv("FALLBACK_SCAN_LIMIT", "")
	t.Setenv("FOUNDER_WINDOW_DAYS", "")
	t.Setenv("PARTNER_INDEX_MODE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90.0, cfg.NameScoreThreshold)
	assert.Equal(t, 92.0, cfg.FallbackScoreThreshold)
	assert.Equal(t, 5000, cfg.FallbackScanLimit)
	assert.Equal(t, 7, cfg.FounderWindowDays)
	assert.Equal(t, PartnerIndexModeMemory, cfg.PartnerIndexMode)
}

func TestLoadConfigInvalidIndexModeFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PARTNER_INDEX_MODE", "redis")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, PartnerIndexModeMemory, cfg.PartnerIndexMode)
}

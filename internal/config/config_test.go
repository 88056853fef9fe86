package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Pipeline.DataDir)
	assert.Equal(t, 1.0, cfg.Pipeline.ChurnCautionMultiplier)
	assert.Equal(t, 2.0, cfg.Pipeline.ChurnAtRiskMultiplier)
	assert.Equal(t, 3.0, cfg.Pipeline.ChurnChurnedMultiplier)
	assert.Equal(t, 30.0, cfg.Pipeline.FallbackIntervalDays)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port above range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Pipeline.DataDir = "" },
			wantErr: "data directory",
		},
		{
			name: "non-increasing churn multipliers",
			mutate: func(c *Config) {
				c.Pipeline.ChurnAtRiskMultiplier = 1
			},
			wantErr: "churn multipliers",
		},
		{
			name: "zero caution multiplier",
			mutate: func(c *Config) {
				c.Pipeline.ChurnCautionMultiplier = 0
			},
			wantErr: "churn multipliers",
		},
		{
			name:    "zero fallback interval",
			mutate:  func(c *Config) { c.Pipeline.FallbackIntervalDays = 0 },
			wantErr: "fallback interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

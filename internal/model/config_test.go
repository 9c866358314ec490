package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerConfig_ApplyDefaults(t *testing.T) {
	cfg := RunnerConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultBunPath, cfg.BunPath)
	assert.Equal(t, DefaultRunTimeout, cfg.Timeout)
	assert.Equal(t, Path(DefaultReportsDir), cfg.ReportsDir)
}

func TestRunnerConfig_ApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := RunnerConfig{
		BunPath: "/usr/local/bin/bun",
		Timeout: 5 * time.Second,
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "/usr/local/bin/bun", cfg.BunPath)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestRunnerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RunnerConfig
		wantErr string
	}{
		{
			name: "valid",
			cfg:  RunnerConfig{BunPath: "bun", Timeout: time.Second},
		},
		{
			name:    "missing bun path",
			cfg:     RunnerConfig{Timeout: time.Second},
			wantErr: "bun path",
		},
		{
			name:    "non-positive timeout",
			cfg:     RunnerConfig{BunPath: "bun", Timeout: -1},
			wantErr: "timeout",
		},
		{
			name: "empty env key",
			cfg: RunnerConfig{
				BunPath: "bun",
				Timeout: time.Second,
				Env:     map[string]string{"": "x"},
			},
			wantErr: "environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

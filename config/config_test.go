package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Model.Platform)
	assert.Equal(t, 4096, cfg.Model.MaxTokens)
	assert.Equal(t, 50, cfg.Agent.MaxEpisodes)
	assert.Equal(t, 3, cfg.Agent.Attempts)
	assert.Equal(t, ".terminus/TERMINUS.md", cfg.Agent.SummaryPath)
	assert.Equal(t, 50, cfg.Developer.MaxToolTurns)
	assert.Equal(t, float64(60), cfg.Developer.CommandTimeoutSec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
model:
  platform: anthropic
  name: claude-sonnet-4-5
agent:
  max_episodes: 10
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Model.Platform)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model.Name)
	assert.Equal(t, 10, cfg.Agent.MaxEpisodes)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, 3, cfg.Agent.Attempts)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsUnknownPlatform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  platform: bedrock\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero episodes", "agent:\n  max_episodes: 0\n"},
		{"negative attempts", "agent:\n  attempts: -1\n"},
		{"temperature too high", "model:\n  temperature: 3.5\n"},
		{"zero tool turns", "developer:\n  max_tool_turns: 0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  platform: openai\n"), 0o644))

	t.Setenv("TERMINUS_MODEL_PLATFORM", "anthropic")
	t.Setenv("TERMINUS_AGENT_MAX_EPISODES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Model.Platform)
	assert.Equal(t, 7, cfg.Agent.MaxEpisodes)
}

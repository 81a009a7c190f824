package common

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 2000, cfg.Notion.ChunkLimit)
	assert.Equal(t, "/transcripts", cfg.Dropbox.Folder)
	assert.Equal(t, 60*time.Second, cfg.Dropbox.PollInterval)
	assert.Equal(t, slog.LevelInfo, cfg.Logging.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("NOTION_CHUNK_LIMIT", "1500")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 1500, cfg.Notion.ChunkLimit)
	assert.InDelta(t, 0.7, float64(cfg.LLM.OpenAI.Temperature), 0.001)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.Level)
}

func TestConfiguredProviders(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.ConfiguredProviders())

	cfg.LLM.OpenAI.APIKey = "k1"
	cfg.LLM.Gemini.APIKey = "k3"
	assert.Equal(t, []string{"openai", "gemini"}, cfg.ConfiguredProviders())
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigurationMissing)

	cfg.LLM.Anthropic.APIKey = "k"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTION_TOKEN")

	cfg.Notion.Token = "tok"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH")

	cfg.Database.Path = "./test.db"
	assert.NoError(t, cfg.Validate())
}

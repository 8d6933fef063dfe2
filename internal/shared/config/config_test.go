package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("AI_RATE_PER_MINUTE", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 20, cfg.AIRatePerMinute)
	assert.Equal(t, "My Resume", cfg.DefaultTitle)
	assert.Equal(t, " (Copy)", cfg.DuplicateSuffix)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("AI_RATE_PER_MINUTE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowOrigin)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, 20, cfg.AIRatePerMinute)
}

func TestIsDevLike(t *testing.T) {
	assert.True(t, IsDevLike("dev"))
	assert.True(t, IsDevLike(" Local "))
	assert.False(t, IsDevLike("production"))
}

func TestLoadLogFormat(t *testing.T) {
	t.Setenv("LOG_JSON", "")
	assert.True(t, Load().LogJSON)

	t.Setenv("LOG_JSON", "false")
	assert.False(t, Load().LogJSON)
}

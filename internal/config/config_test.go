package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "gemini", cfg.NarrativeProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModelID)
	assert.Equal(t, 30*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, 30*time.Second, cfg.QuantModelTimeout)
	assert.Equal(t, "fusion-v2.0.0", cfg.ModelVersionTag)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NARRATIVE_PROVIDER", "Bedrock")
	t.Setenv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku")
	t.Setenv("NARRATIVE_TIMEOUT", "10s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CORS_EXTRA_ORIGIN", "https://c.example")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "bedrock", cfg.NarrativeProvider)
	assert.Equal(t, 10*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.NarrativeConfigured())
}

func TestNarrativeConfigured(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		gemini   string
		bedrock  string
		want     bool
	}{
		{"gemini with key", "gemini", "key-123", "", true},
		{"gemini without key", "gemini", "", "", false},
		{"bedrock with model", "bedrock", "", "model-id", true},
		{"bedrock without model", "bedrock", "key-123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				NarrativeProvider: tt.provider,
				GeminiAPIKey:      tt.gemini,
				BedrockModelID:    tt.bedrock,
			}
			assert.Equal(t, tt.want, cfg.NarrativeConfigured())
		})
	}
}

package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Narrative synthesis (generative-language service)
	NarrativeProvider string // "gemini" or "bedrock"
	GeminiAPIKey      string
	GeminiModelID     string
	BedrockModelID    string
	AWSRegion         string
	NarrativeTimeout  time.Duration

	// Quantitative risk model (optional remote deployment)
	QuantModelURL     string
	QuantModelTimeout time.Duration

	// HTTP surface
	CORSAllowedOrigins []string

	// Governance metadata attached to every unified result
	ModelVersionTag string
	ComplianceTag   string
}

// Load reads configuration from environment variables
func Load() *Config {
	origins := splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", ""))
	if extra := strings.TrimSpace(getEnv("CORS_EXTRA_ORIGIN", "")); extra != "" {
		origins = append(origins, extra)
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		NarrativeProvider: strings.ToLower(strings.TrimSpace(getEnv("NARRATIVE_PROVIDER", "gemini"))),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		NarrativeTimeout:  getEnvAsDuration("NARRATIVE_TIMEOUT", 30*time.Second),

		QuantModelURL:     getEnv("QUANT_MODEL_URL", ""),
		QuantModelTimeout: getEnvAsDuration("QUANT_MODEL_TIMEOUT", 30*time.Second),

		CORSAllowedOrigins: origins,

		ModelVersionTag: getEnv("MODEL_VERSION_TAG", "fusion-v2.0.0"),
		ComplianceTag:   getEnv("COMPLIANCE_TAG", "ai-guidance-only"),
	}
}

// NarrativeConfigured reports whether a generative-language credential is
// present for the selected provider. When false the whole system runs in
// deterministic fallback mode.
func (c *Config) NarrativeConfigured() bool {
	switch c.NarrativeProvider {
	case "bedrock":
		return strings.TrimSpace(c.BedrockModelID) != ""
	default:
		return strings.TrimSpace(c.GeminiAPIKey) != ""
	}
}

func splitAndTrim(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

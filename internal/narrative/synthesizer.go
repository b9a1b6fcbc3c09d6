package narrative

import (
	"context"
	"strings"
	"time"

	"github.com/lifeshield/health-intelligence/internal/observability/metrics"
	"github.com/lifeshield/health-intelligence/pkg/logging"
)

// Deterministic substitutes used whenever the generative service is missing,
// slow, or broken. Callers can rely on these exact values.
const (
	FallbackFreeText = "AI service temporarily unavailable."
	FallbackJSON     = "{}"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.3
	defaultMaxTokens   = 1024
)

// Service is the narrow synthesis contract the analysis branches depend on.
// Implementations never return an error: every failure mode maps to a
// deterministic fallback value.
type Service interface {
	// FreeText returns generated prose for the prompt, or FallbackFreeText.
	FreeText(ctx context.Context, prompt string) string
	// StructuredJSON returns a JSON object string for the prompt, or FallbackJSON.
	StructuredJSON(ctx context.Context, prompt string) string
}

// Synthesizer wraps an LLM provider with the single-attempt, bounded-timeout,
// fallback-on-anything contract. A nil client means no credential was
// configured; the synthesizer then answers every request with its fallback.
type Synthesizer struct {
	client  LLMClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.FusionMetrics
}

// NewSynthesizer creates a synthesizer over the given provider. client may be
// nil to run in deterministic fallback mode.
func NewSynthesizer(client LLMClient, model string, timeout time.Duration, logger *logging.Logger, m *metrics.FusionMetrics) *Synthesizer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Synthesizer{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Enabled reports whether a provider is configured.
func (s *Synthesizer) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *Synthesizer) FreeText(ctx context.Context, prompt string) string {
	return s.generate(ctx, prompt, false)
}

func (s *Synthesizer) StructuredJSON(ctx context.Context, prompt string) string {
	return s.generate(ctx, prompt, true)
}

func (s *Synthesizer) generate(ctx context.Context, prompt string, structured bool) string {
	mode := "text"
	fallback := FallbackFreeText
	if structured {
		mode = "structured"
		fallback = FallbackJSON
	}

	if !s.Enabled() {
		s.metrics.ObserveNarrative(mode, "disabled")
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Complete(ctx, LLMRequest{
		Model:        s.model,
		Messages:     []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:    defaultMaxTokens,
		Temperature:  defaultTemperature,
		JSONResponse: structured,
	})
	if err != nil {
		s.logger.Warn("narrative synthesis failed, using fallback",
			"mode", mode,
			"error", err,
		)
		s.metrics.ObserveNarrative(mode, "fallback")
		return fallback
	}

	text := strings.TrimSpace(resp.Text)
	if structured {
		text = stripCodeFence(text)
	}
	if text == "" {
		s.metrics.ObserveNarrative(mode, "fallback")
		return fallback
	}

	s.metrics.ObserveNarrative(mode, "ok")
	return text
}

// stripCodeFence unwraps ```json ... ``` fenced blocks some models emit even
// in JSON mode.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

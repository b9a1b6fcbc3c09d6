package wellness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/narrative"
	"github.com/lifeshield/health-intelligence/internal/subject"
)

type stubSynth struct {
	json       string
	lastPrompt string
}

func (s *stubSynth) FreeText(_ context.Context, prompt string) string {
	s.lastPrompt = prompt
	return narrative.FallbackFreeText
}

func (s *stubSynth) StructuredJSON(_ context.Context, prompt string) string {
	s.lastPrompt = prompt
	if s.json == "" {
		return narrative.FallbackJSON
	}
	return s.json
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

const refinementJSON = `{
	"outbreak_alert": "Seasonal flu circulating in the district.",
	"regional_seasonal_risks": [
		{"region": "Guntur", "disease": "Dengue", "risk_level": "High"}
	],
	"recommendations": ["Use mosquito nets", "Stay hydrated", "Avoid stagnant water"]
}`

func TestDeterministicForecastNumbers(t *testing.T) {
	f := NewForecaster(&stubSynth{json: refinementJSON})
	f.nowFn = fixedNow(time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC))

	got := f.Forecast(context.Background(), Input{
		Profile: subject.Profile{Age: 45, Gender: "male"},
		Risk:    biorisk.Assessment{RiskProbability: 0.40, RiskLevel: biorisk.LevelLow, VitalityScore: 64},
	})

	assert.InDelta(t, 0.44, got.Risk7Day, 1e-9)
	assert.InDelta(t, 0.32, got.Risk30Day, 1e-9)
	assert.InDelta(t, 0.80, got.DeviationScore, 1e-9)
	assert.Equal(t, PeakDateNotApplicable, got.PeakDate, "deviation below 1.0 yields no peak")
	assert.Equal(t, "Winter", got.Season)
	assert.Equal(t, "Pitta-Kapha", got.Constitution)
}

func TestPeakDateSetWhenDeviationExceedsOne(t *testing.T) {
	f := NewForecaster(&stubSynth{json: refinementJSON})
	f.nowFn = fixedNow(time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC))

	got := f.Forecast(context.Background(), Input{
		Profile: subject.Profile{Age: 60, Gender: "female"},
		Risk:    biorisk.Assessment{RiskProbability: 0.80, RiskLevel: biorisk.LevelHigh, VitalityScore: 30},
	})

	assert.InDelta(t, 1.60, got.DeviationScore, 1e-9)
	assert.Equal(t, "2026-08-15", got.PeakDate)
	assert.Equal(t, "Monsoon", got.Season)
	assert.Equal(t, "Vata-Kapha", got.Constitution)
}

func TestSevenDayRiskClampedAtOne(t *testing.T) {
	f := NewForecaster(&stubSynth{json: refinementJSON})
	f.nowFn = fixedNow(time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC))

	got := f.Forecast(context.Background(), Input{
		Risk: biorisk.Assessment{RiskProbability: 0.95},
	})

	assert.InDelta(t, 1.0, got.Risk7Day, 1e-9)
	assert.Equal(t, "Summer", got.Season)
}

func TestNarrativeRefinementApplied(t *testing.T) {
	synth := &stubSynth{json: refinementJSON}
	f := NewForecaster(synth)
	f.nowFn = fixedNow(time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC))

	got := f.Forecast(context.Background(), Input{
		Profile:  subject.Profile{Age: 30, Gender: "female", District: "Guntur"},
		Language: "te",
		Risk:     biorisk.Assessment{RiskProbability: 0.30, RiskLevel: biorisk.LevelLow, VitalityScore: 72},
	})

	assert.Equal(t, "Seasonal flu circulating in the district.", got.OutbreakAlert)
	assert.Len(t, got.RegionalRisks, 1)
	assert.Equal(t, "Dengue", got.RegionalRisks[0].Disease)
	assert.Len(t, got.Recommendations, 3)
	assert.InDelta(t, 0.25, got.ConfidenceLow, 1e-9)
	assert.InDelta(t, 0.35, got.ConfidenceHigh, 1e-9)
	assert.Contains(t, synth.lastPrompt, "Guntur")
	assert.Contains(t, synth.lastPrompt, "Telugu")
	assert.Contains(t, synth.lastPrompt, "Post-Monsoon")
}

func TestNarrativeFailureYieldsMinimalForecast(t *testing.T) {
	f := NewForecaster(&stubSynth{}) // returns "{}"
	f.nowFn = fixedNow(time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))

	got := f.Forecast(context.Background(), Input{
		Profile: subject.Profile{Age: 45, Gender: "male"},
		Risk:    biorisk.Assessment{RiskProbability: 0.40},
	})

	// Deterministic numbers survive; regional detail does not.
	assert.InDelta(t, 0.44, got.Risk7Day, 1e-9)
	assert.Empty(t, got.RegionalRisks)
	assert.Empty(t, got.Recommendations)
	assert.Empty(t, got.OutbreakAlert)
	assert.InDelta(t, 0.15, got.ConfidenceLow, 1e-9)
	assert.InDelta(t, 0.65, got.ConfidenceHigh, 1e-9)
}

func TestNarrativeMalformedJSONYieldsMinimalForecast(t *testing.T) {
	f := NewForecaster(&stubSynth{json: `{"regional_seasonal_risks": [`})
	f.nowFn = fixedNow(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	got := f.Forecast(context.Background(), Input{
		Risk: biorisk.Assessment{RiskProbability: 0.2},
	})

	assert.Empty(t, got.RegionalRisks)
	assert.NotNil(t, got.Recommendations)
}

func TestConstitutionBuckets(t *testing.T) {
	tests := []struct {
		age    int
		gender string
		want   string
	}{
		{10, "male", "Kapha"},
		{25, "male", "Pitta-Vata"},
		{25, "female", "Vata-Pitta"},
		{45, "female", "Pitta"},
		{70, "male", "Vata"},
	}
	for _, tt := range tests {
		got := constitutionFor(subject.Profile{Age: tt.age, Gender: tt.gender})
		assert.Equal(t, tt.want, got, "age %d %s", tt.age, tt.gender)
	}
}

func TestSeasonBoundaries(t *testing.T) {
	assert.Equal(t, "Winter", seasonFor(time.December))
	assert.Equal(t, "Winter", seasonFor(time.February))
	assert.Equal(t, "Summer", seasonFor(time.March))
	assert.Equal(t, "Summer", seasonFor(time.June))
	assert.Equal(t, "Monsoon", seasonFor(time.July))
	assert.Equal(t, "Post-Monsoon", seasonFor(time.November))
}

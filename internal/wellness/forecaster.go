// Package wellness produces seasonal regional risk forecasts. The numeric
// forecast is derived deterministically from the quantitative risk estimate;
// narrative synthesis only refines it with regional detail and
// recommendations, and its failure never fails the overall request.
package wellness

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/narrative"
	"github.com/lifeshield/health-intelligence/internal/subject"
)

// PeakDateNotApplicable is the sentinel when deviation stays at or below 1.0.
const PeakDateNotApplicable = "N/A"

// Fixed multipliers applied to the risk probability for the two horizons.
const (
	sevenDayMultiplier  = 1.1
	thirtyDayMultiplier = 0.8
)

// RegionalRisk is one region-tagged seasonal disease risk.
type RegionalRisk struct {
	Region    string `json:"region"`
	Disease   string `json:"disease"`
	RiskLevel string `json:"risk_level"`
}

// Forecast is the seasonal wellness outcome for one subject.
type Forecast struct {
	Constitution    string         `json:"constitution"`
	Season          string         `json:"season"`
	Risk7Day        float64        `json:"risk_7_day"`
	Risk30Day       float64        `json:"risk_30_day"`
	DeviationScore  float64        `json:"z_score_deviation"`
	PeakDate        string         `json:"peak_date"`
	ConfidenceLow   float64        `json:"confidence_low"`
	ConfidenceHigh  float64        `json:"confidence_high"`
	OutbreakAlert   string         `json:"outbreak_alert"`
	RegionalRisks   []RegionalRisk `json:"regional_seasonal_risks"`
	Recommendations []string       `json:"recommendations"`
}

// Input carries the read-only context for one forecast.
type Input struct {
	Profile  subject.Profile
	Language string
	Risk     biorisk.Assessment
}

// Forecaster combines deterministic seasonal heuristics with narrative
// refinement. Stateless and re-entrant.
type Forecaster struct {
	synth narrative.Service
	nowFn func() time.Time
}

// NewForecaster creates a seasonal wellness forecaster.
func NewForecaster(synth narrative.Service) *Forecaster {
	return &Forecaster{
		synth: synth,
		nowFn: time.Now,
	}
}

// Forecast builds the deterministic numeric forecast, then asks the narrative
// layer for regional risks and recommendations. A failed or unparseable
// narrative response degrades to a minimal low-confidence forecast.
func (f *Forecaster) Forecast(ctx context.Context, in Input) Forecast {
	now := f.nowFn()
	risk := in.Risk.RiskProbability

	deviation := round2(risk * 2)
	peakDate := PeakDateNotApplicable
	if deviation > 1.0 {
		peakDate = now.AddDate(0, 0, 14).Format("2006-01-02")
	}

	out := Forecast{
		Constitution:   constitutionFor(in.Profile),
		Season:         seasonFor(now.Month()),
		Risk7Day:       round2(clamp01(risk * sevenDayMultiplier)),
		Risk30Day:      round2(clamp01(risk * thirtyDayMultiplier)),
		DeviationScore: deviation,
		PeakDate:       peakDate,
	}

	raw := f.synth.StructuredJSON(ctx, f.buildPrompt(in, out))

	var refinement struct {
		OutbreakAlert   string         `json:"outbreak_alert"`
		RegionalRisks   []RegionalRisk `json:"regional_seasonal_risks"`
		Recommendations []string       `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &refinement); err != nil || len(refinement.RegionalRisks) == 0 {
		// Minimal forecast: wide confidence band, no regional detail.
		out.ConfidenceLow = clamp01(risk - 0.25)
		out.ConfidenceHigh = clamp01(risk + 0.25)
		out.RegionalRisks = []RegionalRisk{}
		out.Recommendations = []string{}
		return out
	}

	out.ConfidenceLow = clamp01(risk - 0.05)
	out.ConfidenceHigh = clamp01(risk + 0.05)
	out.OutbreakAlert = refinement.OutbreakAlert
	out.RegionalRisks = refinement.RegionalRisks
	out.Recommendations = refinement.Recommendations
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return out
}

// constitutionFor deduces the constitutional-type label from age/sex buckets.
func constitutionFor(p subject.Profile) string {
	female := p.IsFemale()
	switch {
	case p.Age < 16:
		return "Kapha"
	case p.Age <= 35:
		if female {
			return "Vata-Pitta"
		}
		return "Pitta-Vata"
	case p.Age <= 55:
		if female {
			return "Pitta"
		}
		return "Pitta-Kapha"
	default:
		if female {
			return "Vata-Kapha"
		}
		return "Vata"
	}
}

// seasonFor maps a calendar month to the regional season label.
func seasonFor(m time.Month) string {
	switch {
	case m == time.December || m <= time.February:
		return "Winter"
	case m <= time.June:
		return "Summer"
	case m <= time.September:
		return "Monsoon"
	default:
		return "Post-Monsoon"
	}
}

func (f *Forecaster) buildPrompt(in Input, base Forecast) string {
	p := in.Profile
	region := strings.TrimSpace(strings.Join(nonEmpty(p.District, p.Mandal), ", "))
	if region == "" {
		region = "the subject's locality"
	}

	return fmt.Sprintf(`You are a regional seasonal health forecaster.
SUBJECT: Age %d, Gender %s, Constitution %s.
SEASON: %s. Quantitative risk: %s (%.0f%%), vitality %d/100.
REGION: %s.

IMPORTANT: All JSON values must be in %s.
Return ONLY this exact JSON:
{
  "outbreak_alert": "One-sentence regional outbreak status.",
  "regional_seasonal_risks": [
    {"region": "Region name", "disease": "Disease name", "risk_level": "Low|Moderate|High"}
  ],
  "recommendations": ["Personalized seasonal recommendation 1", "Recommendation 2", "Recommendation 3"]
}`,
		p.Age, p.Gender, base.Constitution,
		base.Season, in.Risk.RiskLevel, in.Risk.RiskProbability*100, in.Risk.VitalityScore,
		region,
		narrative.LanguageName(in.Language),
	)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package orchestrator

import (
	"fmt"
	"strings"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/compliance"
	"github.com/lifeshield/health-intelligence/internal/medsafety"
	"github.com/lifeshield/health-intelligence/internal/nutrition"
	"github.com/lifeshield/health-intelligence/internal/subject"
	"github.com/lifeshield/health-intelligence/internal/triage"
	"github.com/lifeshield/health-intelligence/internal/wellness"
)

// UnifiedRequest is the single inbound payload. Profile is mandatory; every
// other field widens the set of branches that run.
type UnifiedRequest struct {
	Profile        subject.Profile  `json:"profile"`
	Query          string           `json:"query,omitempty"`
	Medications    []string         `json:"medications,omitempty"`
	ProblemContext string           `json:"problemContext,omitempty"`
	Symptoms       []subject.Record `json:"symptoms,omitempty"`
	NutritionLogs  []subject.Record `json:"nutritionLogs,omitempty"`
	ClinicalVault  []subject.Record `json:"clinicalVault,omitempty"`
	Language       string           `json:"language,omitempty"`
}

// Validate rejects requests no branch could process meaningfully.
func (r UnifiedRequest) Validate() error {
	if r.Profile.Age < 1 || r.Profile.Age > 120 {
		return fmt.Errorf("orchestrator: age %d outside [1,120]", r.Profile.Age)
	}
	if r.Profile.Weight <= 0 {
		return fmt.Errorf("orchestrator: weight must be positive, got %.1f", r.Profile.Weight)
	}
	return nil
}

// EffectiveMedications returns the request medication list, falling back to
// the profile's current medications.
func (r UnifiedRequest) EffectiveMedications() []string {
	if len(r.Medications) > 0 {
		return r.Medications
	}
	return r.Profile.CurrentMedications
}

// EffectiveLanguage defaults the language tag to English.
func (r UnifiedRequest) EffectiveLanguage() string {
	if strings.TrimSpace(r.Language) == "" {
		return "en"
	}
	return r.Language
}

// hasComplaint reports whether the triage branch has anything to classify.
func (r UnifiedRequest) hasComplaint() bool {
	return strings.TrimSpace(r.Query) != "" || strings.TrimSpace(r.ProblemContext) != ""
}

// UnifiedResult is the fused response. A nil branch pointer means the branch
// was skipped or failed; the overall result is still delivered.
type UnifiedResult struct {
	BioRisk          *biorisk.Assessment   `json:"risk_assessment"`
	MedicationSafety *medsafety.Finding    `json:"medication_safety,omitempty"`
	Triage           *triage.Assessment    `json:"triage,omitempty"`
	Nutrition        *nutrition.Plan       `json:"nutrition,omitempty"`
	Wellness         *wellness.Forecast    `json:"wellness_forecast,omitempty"`
	GuardianSummary  string                `json:"guardian_summary"`
	Language         string                `json:"language"`
	Disclaimer       string                `json:"disclaimer"`
	Governance       compliance.Governance `json:"governance"`
}

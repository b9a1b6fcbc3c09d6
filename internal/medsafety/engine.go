// Package medsafety evaluates medication lists against a fixed interaction
// rule table, fused with the subject's organ-stress estimate. The verdict is
// fully deterministic; narrative synthesis only decorates it with a
// human-readable explanation.
package medsafety

import (
	"context"
	"fmt"
	"strings"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/narrative"
	"github.com/lifeshield/health-intelligence/internal/subject"
)

// Interaction severity tiers, ordered SAFE < CAUTION < DANGER. Transitions are
// monotone-increasing within one evaluation.
const (
	LevelSafe    = "SAFE"
	LevelCaution = "CAUTION"
	LevelDanger  = "DANGER"
)

// Finding is the structured outcome of one safety evaluation.
type Finding struct {
	InteractionLevel string   `json:"interaction_level"`
	Conflicts        []string `json:"conflicts_detected"`
	Explanation      string   `json:"explanation"`
	NextAction       string   `json:"next_action"`
}

// Input carries everything one evaluation reads. All fields are read-only.
type Input struct {
	Profile        subject.Profile
	Medications    []string
	ProblemContext string
	Symptoms       []subject.Record
	NutritionLogs  []subject.Record
	ClinicalVault  []subject.Record
	Language       string
	Risk           biorisk.Assessment
}

type pairRule struct {
	drugs   []string
	finding string
}

// Known dangerous medication-pair combinations. Every drug in a combo present
// forces the tier to DANGER.
var dangerousCombos = []pairRule{
	{[]string{"aspirin", "warfarin"}, "High bleeding risk between Aspirin and Warfarin."},
	{[]string{"aspirin", "ibuprofen"}, "Double NSAID — increased GI bleeding risk."},
	{[]string{"metformin", "alcohol"}, "Lactic acidosis risk with Metformin + Alcohol."},
	{[]string{"ssri", "tramadol"}, "Serotonin syndrome risk."},
	{[]string{"digoxin", "amiodarone"}, "Digoxin toxicity risk."},
}

var (
	hepatotoxicDrugs   = []string{"paracetamol", "acetaminophen", "statin"}
	nephrotoxicNSAIDs  = []string{"ibuprofen", "naproxen", "diclofenac"}
	cardioStimulants   = []string{"pseudoephedrine", "caffeine"}
	pregnancyAbsolutes = []string{"ibuprofen", "aspirin", "warfarin"}
)

const nextActionText = "Consult your doctor before taking these medications together."

// Engine is the deterministic safety rule engine. Stateless and re-entrant.
type Engine struct {
	synth narrative.Service
}

// NewEngine creates a rule engine that decorates findings via synth.
func NewEngine(synth narrative.Service) *Engine {
	return &Engine{synth: synth}
}

// Evaluate runs the rule table over the lower-cased medication set and
// returns the finding. The tier and conflict list never depend on the
// narrative call succeeding.
func (e *Engine) Evaluate(ctx context.Context, in Input) Finding {
	meds := normalizeMeds(in.Medications)
	level := LevelSafe
	var conflicts []string

	for _, combo := range dangerousCombos {
		if containsAll(meds, combo.drugs) {
			conflicts = append(conflicts, combo.finding)
			level = escalate(level, LevelDanger)
		}
	}

	stress := in.Risk.OrganStress
	if (in.Profile.HasLiverDisease || stress.Liver > 0.6) && containsAny(meds, hepatotoxicDrugs) {
		conflicts = append(conflicts, fmt.Sprintf("Elevated liver stress (%.2f): hepatotoxicity risk.", stress.Liver))
		level = escalate(level, LevelDanger)
	}
	if (in.Profile.HasKidneyDisease || stress.Kidney > 0.6) && containsAny(meds, nephrotoxicNSAIDs) {
		conflicts = append(conflicts, fmt.Sprintf("Elevated renal stress (%.2f): NSAID contraindication.", stress.Kidney))
		level = escalate(level, LevelDanger)
	}
	if stress.Cardio > 0.7 && containsAny(meds, cardioStimulants) {
		conflicts = append(conflicts, fmt.Sprintf("Elevated cardio stress (%.2f): stimulant risk.", stress.Cardio))
		level = escalate(level, LevelCaution)
	}
	if in.Profile.IsPregnant && containsAny(meds, pregnancyAbsolutes) {
		conflicts = append(conflicts, "Medication contraindicated in pregnancy.")
		level = escalate(level, LevelDanger)
	}

	conflictText := "No major drug interactions detected."
	if len(conflicts) > 0 {
		conflictText = strings.Join(conflicts, "; ")
	}

	explanation := e.synth.FreeText(ctx, e.buildPrompt(in, conflictText, level))
	if explanation == narrative.FallbackFreeText {
		explanation = conflictText
	}

	return Finding{
		InteractionLevel: level,
		Conflicts:        conflicts,
		Explanation:      explanation,
		NextAction:       nextActionText,
	}
}

func (e *Engine) buildPrompt(in Input, conflictText, level string) string {
	p := in.Profile
	stress := in.Risk.OrganStress

	symptoms := summarizeRecords(in.Symptoms, func(r subject.Record) string {
		return fmt.Sprintf("%s (%s)", r.Field("name", "Symptom"), r.Field("severity", "moderate"))
	})
	nutritionLogs := summarizeRecords(in.NutritionLogs, func(r subject.Record) string {
		return "Log: " + r.Field("description", "")
	})
	vault := summarizeRecords(in.ClinicalVault, func(r subject.Record) string {
		return "Report: " + r.Field("name", "Lab Result")
	})

	problem := in.ProblemContext
	if strings.TrimSpace(problem) == "" {
		problem = "General safety check"
	}

	return fmt.Sprintf(`You are a clinical pharmacist AI.
Patient: Age %d, Gender %s.
Quantitative risk: %s risk (%.0f%%) with vitality %d/100.
Organ stress: liver %.2f, kidney %.2f, cardio %.2f.

PATIENT HISTORY:
Symptoms: %s
Recent nutrition: %s
Clinical reports: %s

Medications to scan: %s.
Problem context (reason for taking): %s

Rule-based findings: %s. Safety status: %s.

IMPORTANT: Write your response in %s.
Write a 2-sentence highly specific clinical synthesis based on the fusion of the history and the current medication scan. Address them by name if known: %s.`,
		p.Age, p.Gender,
		in.Risk.RiskLevel, in.Risk.RiskProbability*100, in.Risk.VitalityScore,
		stress.Liver, stress.Kidney, stress.Cardio,
		orDefault(symptoms, "None logged recently"),
		orDefault(nutritionLogs, "Standard diet"),
		orDefault(vault, "No past reports available"),
		strings.Join(in.Medications, ", "),
		problem,
		conflictText, level,
		narrative.LanguageName(in.Language),
		p.Name,
	)
}

func summarizeRecords(records []subject.Record, format func(subject.Record) string) string {
	if len(records) == 0 {
		return ""
	}
	const maxRecords = 3
	parts := make([]string, 0, maxRecords)
	for i, r := range records {
		if i == maxRecords {
			break
		}
		parts = append(parts, format(r))
	}
	return strings.Join(parts, "; ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func escalate(current, proposed string) string {
	if rank(proposed) > rank(current) {
		return proposed
	}
	return current
}

func rank(level string) int {
	switch level {
	case LevelDanger:
		return 2
	case LevelCaution:
		return 1
	default:
		return 0
	}
}

func normalizeMeds(meds []string) map[string]struct{} {
	set := make(map[string]struct{}, len(meds))
	for _, m := range meds {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			set[m] = struct{}{}
		}
	}
	return set
}

func containsAll(set map[string]struct{}, drugs []string) bool {
	for _, d := range drugs {
		if _, ok := set[d]; !ok {
			return false
		}
	}
	return true
}

func containsAny(set map[string]struct{}, drugs []string) bool {
	for _, d := range drugs {
		if _, ok := set[d]; ok {
			return true
		}
	}
	return false
}

// Package triage classifies a free-text complaint into an urgency tier. A
// fixed keyword detector bounds worst-case harm: a keyword-critical complaint
// stays Critical no matter what the generative layer returns.
package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/narrative"
	"github.com/lifeshield/health-intelligence/internal/subject"
)

// Urgency tiers, ordered Mild < Moderate < High < Critical.
const (
	LevelMild     = "Mild"
	LevelModerate = "Moderate"
	LevelHigh     = "High"
	LevelCritical = "Critical"
)

// highRiskKeywords trigger an immediate Critical override.
var highRiskKeywords = []string{
	"chest pain",
	"heart attack",
	"stroke",
	"seizure",
	"difficulty breathing",
	"severe bleeding",
	"loss of consciousness",
	"unconscious",
}

const disclaimerText = "AI guidance only. Consult a doctor."

// Assessment is the structured urgency classification for one complaint.
type Assessment struct {
	TriageLevel              string   `json:"triage_level"`
	BasicCareAdvice          string   `json:"basic_care_advice"`
	SpecialistRecommendation string   `json:"specialist_recommendation"`
	FollowUpQuestions        []string `json:"follow_up_questions"`
	Disclaimer               string   `json:"disclaimer"`
}

// Input carries the complaint and its read-only context.
type Input struct {
	Profile        subject.Profile
	Query          string
	ProblemContext string
	Symptoms       []subject.Record
	ClinicalVault  []subject.Record
	Language       string
	Risk           biorisk.Assessment
}

// Classifier combines the keyword detector with structured narrative
// synthesis. Stateless and re-entrant.
type Classifier struct {
	synth narrative.Service
}

// NewClassifier creates a triage classifier.
func NewClassifier(synth narrative.Service) *Classifier {
	return &Classifier{synth: synth}
}

// Classify returns the urgency assessment for the complaint. On any parse
// failure of the generative response it falls back to a deterministic
// default whose tier honors the keyword override.
func (c *Classifier) Classify(ctx context.Context, in Input) Assessment {
	inputText := strings.TrimSpace(in.Query)
	if inputText == "" {
		inputText = strings.TrimSpace(in.ProblemContext)
	}

	isCritical := matchesHighRiskKeyword(inputText)

	raw := c.synth.StructuredJSON(ctx, c.buildPrompt(in, inputText, isCritical))

	assessment, ok := parseAssessment(raw)
	if !ok {
		assessment = defaultAssessment(inputText, isCritical)
	}
	if isCritical {
		// The override can never be downgraded by generative output.
		assessment.TriageLevel = LevelCritical
	} else if assessment.TriageLevel == LevelCritical {
		// Critical is reserved for the keyword override. A generative
		// response claiming it on its own is capped at High.
		assessment.TriageLevel = LevelHigh
	}
	if assessment.Disclaimer == "" {
		assessment.Disclaimer = disclaimerText
	}
	return assessment
}

func matchesHighRiskKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range highRiskKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func parseAssessment(raw string) (Assessment, bool) {
	var a Assessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return Assessment{}, false
	}
	switch a.TriageLevel {
	case LevelMild, LevelModerate, LevelHigh, LevelCritical:
	default:
		return Assessment{}, false
	}
	if strings.TrimSpace(a.BasicCareAdvice) == "" {
		return Assessment{}, false
	}
	return a, true
}

func defaultAssessment(inputText string, isCritical bool) Assessment {
	level := LevelModerate
	if isCritical {
		level = LevelCritical
	}
	return Assessment{
		TriageLevel:              level,
		BasicCareAdvice:          fmt.Sprintf("For '%s': rest and monitor vitals.", inputText),
		SpecialistRecommendation: "General Physician",
		FollowUpQuestions: []string{
			"How long has this been going on?",
			"Do you have a fever?",
			"Are you taking any medications?",
		},
		Disclaimer: disclaimerText,
	}
}

func (c *Classifier) buildPrompt(in Input, inputText string, isCritical bool) string {
	p := in.Profile

	conditions := strings.Join(p.ConditionNames(), ", ")
	if conditions == "" {
		conditions = "None"
	}

	var symptoms []string
	for _, r := range in.Symptoms {
		symptoms = append(symptoms, r.Field("name", "Symptom"))
	}
	var vault []string
	for _, r := range in.ClinicalVault {
		vault = append(vault, "Docs: "+r.Field("name", "Report"))
	}

	levelConstraint := "Mild|Moderate|High"
	if isCritical {
		levelConstraint = LevelCritical
	}

	lang := narrative.LanguageName(in.Language)
	return fmt.Sprintf(`You are an emergency triage AI doctor.
PATIENT: %s, Age %d, Gender %s. Quantitative risk: %s.
CONDITIONS: %s
PAST SYMPTOMS: %s
CLINICAL VAULT: %s
CHIEF COMPLAINT: %s

IMPORTANT: All JSON values must be in %s.
Return ONLY this exact JSON:
{
  "triage_level": "%s",
  "basic_care_advice": "Specific 2-sentence actionable advice based on the history and complaint.",
  "specialist_recommendation": "Specific doctor type",
  "follow_up_questions": ["Question 1", "Question 2", "Question 3"],
  "disclaimer": "%s"
}`,
		p.Name, p.Age, p.Gender, in.Risk.RiskLevel,
		conditions,
		strings.Join(symptoms, "; "),
		strings.Join(vault, "; "),
		inputText,
		lang,
		levelConstraint,
		disclaimerText,
	)
}

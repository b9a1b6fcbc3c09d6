// Package nutrition computes a deterministic daily energy requirement,
// adjusted for recovery when the quantitative vitality score is low.
package nutrition

import (
	"fmt"
	"strings"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/subject"
)

// Reference height for the basal metabolic estimate; height is not collected.
const referenceHeightCM = 170

// Vitality below this threshold adds the recovery increment.
const (
	recoveryVitalityThreshold = 50
	recoveryCalories          = 200
)

// Plan is the structured nutrition outcome for one subject.
type Plan struct {
	RequiredCalories  int                 `json:"required_calories"`
	CurrentStatus     string              `json:"current_status"`
	MacroBalanceScore int                 `json:"macro_balance_score"`
	AdjustmentNote    string              `json:"profession_adjustment"`
	Recommendations   map[string][]string `json:"recommendations"`
}

// Planner is a pure energy-requirement calculator. It always succeeds.
type Planner struct{}

// NewPlanner creates a nutrition planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan derives the daily requirement via a Mifflin-St Jeor style estimate.
// Identical input yields identical output across calls.
func (pl *Planner) Plan(p subject.Profile, risk biorisk.Assessment) Plan {
	bmr := 10*p.Weight + 6.25*referenceHeightCM - 5*float64(p.Age)
	if p.IsFemale() {
		bmr -= 161
	} else {
		bmr += 5
	}

	multiplier := 1.2
	if strings.EqualFold(strings.TrimSpace(p.ActivityLevel), "Active") {
		multiplier = 1.375
	}
	required := int(bmr * multiplier)

	vitalityNote := ""
	if risk.VitalityScore < recoveryVitalityThreshold {
		vitalityNote = " Caloric intake adjusted for recovery due to low vitality score."
		required += recoveryCalories
	}

	profession := strings.TrimSpace(p.Profession)
	if profession == "" {
		profession = "General"
	}

	return Plan{
		RequiredCalories:  required,
		CurrentStatus:     "Balanced",
		MacroBalanceScore: 85,
		AdjustmentNote:    fmt.Sprintf("Calibrated for %s lifestyle.%s", profession, vitalityNote),
		Recommendations: map[string][]string{
			"vegetarian":     {"Dal Khichdi", "Paneer Sabzi", "Rajma"},
			"non_vegetarian": {"Grilled Chicken", "Fish Curry", "Egg Bhurji"},
			"fruits":         {"Papaya", "Pomegranate", "Banana"},
		},
	}
}

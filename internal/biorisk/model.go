// Package biorisk computes the foundational quantitative risk assessment that
// every downstream analysis branch consumes as read-only context.
package biorisk

import (
	"math"

	"github.com/lifeshield/health-intelligence/internal/subject"
)

// Risk level tiers, ordered Low < Moderate < High.
const (
	LevelLow      = "Low"
	LevelModerate = "Moderate"
	LevelHigh     = "High"
)

// OrganStress is a bounded per-organ-system severity estimate.
type OrganStress struct {
	Cardio      float64 `json:"cardio"`
	Liver       float64 `json:"liver"`
	Kidney      float64 `json:"kidney"`
	Respiratory float64 `json:"respiratory"`
}

// Assessment is the quantitative risk estimate for one subject. It is computed
// once per request and never mutated afterwards.
type Assessment struct {
	RiskProbability float64     `json:"risk_probability"`
	RiskLevel       string      `json:"risk_level"`
	VitalityScore   int         `json:"vitality_score"`
	OrganStress     OrganStress `json:"organ_stress"`
}

// Features is the normalized feature record fed to the risk model, local or
// remote. Field names match the remote model's wire format.
type Features struct {
	Age      int     `json:"age"`
	Gender   int     `json:"gender"` // 1 = male, 0 = female
	BMI      float64 `json:"bmi"`
	GenHlth  int     `json:"genhlth"` // 1 (excellent) to 5 (poor)
	Smoker   int     `json:"smoker"`
	Income   int     `json:"income"`
	PhysHlth int     `json:"physhlth"`
	MentHlth int     `json:"menthlth"`
}

// Reference heights used to approximate BMI when only weight is collected.
const (
	referenceHeightFemale = 1.58
	referenceHeightMale   = 1.70
	defaultBMI            = 22.0
)

// FeaturesFromProfile normalizes a subject profile into the model's clamped
// feature domain.
func FeaturesFromProfile(p subject.Profile) Features {
	height := referenceHeightMale
	gender := 1
	if p.IsFemale() {
		height = referenceHeightFemale
		gender = 0
	}

	bmi := defaultBMI
	if p.Weight > 0 {
		bmi = math.Round(p.Weight/(height*height)*10) / 10
	}

	genhlth := 1 + p.ChronicConditionCount()
	if genhlth > 5 {
		genhlth = 5
	}

	return Features{
		Age:     clampInt(p.Age, 1, 120),
		Gender:  gender,
		BMI:     clampFloat(bmi, 10, 60),
		GenHlth: genhlth,
		Income:  50000, // not collected; remote model default
	}
}

// scoreLocal is the deterministic weighted-linear risk model. It is pure and
// total over the clamped feature domain.
func scoreLocal(f Features, p subject.Profile) (prob float64, level string, vitality int) {
	risk := 0.1

	if f.Age > 40 {
		risk += float64(f.Age-40) * 0.01
	}
	if f.BMI > 25 {
		risk += (f.BMI - 25) * 0.02
	}
	risk += float64(f.GenHlth-1) * 0.12

	if p.HasDiabetes {
		risk += 0.15
	}
	if p.HasHighBP {
		risk += 0.12
	}
	if p.HasHeartDisease {
		risk += 0.25
	}

	prob = clampFloat(risk, 0.05, 0.95)
	level = levelFor(prob)
	vitality = vitalityFor(prob, f.Age)
	return prob, level, vitality
}

func levelFor(prob float64) string {
	switch {
	case prob > 0.7:
		return LevelHigh
	case prob > 0.4:
		return LevelModerate
	default:
		return LevelLow
	}
}

func vitalityFor(prob float64, age int) int {
	v := 100 - prob*80 - float64(age)/10
	return int(clampFloat(v, 10, 100))
}

// organStress derives the per-organ severity vector from condition flags fused
// with the chosen risk probability. Always computed locally, whichever model
// produced the probability.
func organStress(p subject.Profile, prob float64) OrganStress {
	cardio := 0.15 + boolWeight(p.HasHeartDisease, 0.4) + boolWeight(p.HasHighBP, 0.2) + prob*0.25
	liver := 0.1 + boolWeight(p.HasLiverDisease, 0.6) + boolWeight(p.HasDiabetes, 0.1) + prob*0.1
	kidney := 0.1 + boolWeight(p.HasKidneyDisease, 0.6) + boolWeight(p.HasDiabetes, 0.2) + prob*0.1
	respiratory := 0.1 + boolWeight(p.HasAsthma, 0.5) + prob*0.15

	return OrganStress{
		Cardio:      round2(clampFloat(cardio, 0, 1)),
		Liver:       round2(clampFloat(liver, 0, 1)),
		Kidney:      round2(clampFloat(kidney, 0, 1)),
		Respiratory: round2(clampFloat(respiratory, 0, 1)),
	}
}

func boolWeight(flag bool, w float64) float64 {
	if flag {
		return w
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package subject holds the caller-supplied profile and context records that
// every analysis branch consumes as read-only input. Nothing in this package
// is retained past request completion.
package subject

import "strings"

// Condition is one free-form health condition entry on a profile.
type Condition struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// Profile is the identity and biometric snapshot for one subject. It is
// immutable for the duration of a request.
type Profile struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Weight float64 `json:"weight"`

	Conditions []Condition `json:"conditions"`

	HasLiverDisease  bool `json:"hasLiverDisease"`
	HasKidneyDisease bool `json:"hasKidneyDisease"`
	HasDiabetes      bool `json:"hasDiabetes"`
	HasHighBP        bool `json:"hasHighBP"`
	HasHeartDisease  bool `json:"hasHeartDisease"`
	HasAsthma        bool `json:"hasAsthma"`
	IsPregnant       bool `json:"isPregnant"`

	CurrentMedications []string `json:"currentMedications"`
	Allergies          []string `json:"allergies"`

	Profession    string `json:"profession"`
	ActivityLevel string `json:"activity_level"`
	District      string `json:"district"`
	Mandal        string `json:"mandal"`
}

// IsFemale reports the gender flag used for reference-height and BMR terms.
func (p Profile) IsFemale() bool {
	return strings.EqualFold(strings.TrimSpace(p.Gender), "female")
}

// ChronicConditionCount counts active chronic flags plus free-form conditions.
func (p Profile) ChronicConditionCount() int {
	count := len(p.Conditions)
	for _, flag := range []bool{
		p.HasLiverDisease,
		p.HasKidneyDisease,
		p.HasDiabetes,
		p.HasHighBP,
		p.HasHeartDisease,
	} {
		if flag {
			count++
		}
	}
	return count
}

// ConditionNames returns the free-form condition names for prompt assembly.
func (p Profile) ConditionNames() []string {
	names := make([]string, 0, len(p.Conditions))
	for _, c := range p.Conditions {
		if strings.TrimSpace(c.Name) != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// Record is an opaque key-value context log entry (symptom, nutrition log,
// clinical document). Records are consumed only as narrative context and are
// never parsed structurally.
type Record map[string]any

// Field returns the string value under key, or fallback when absent or not a
// string.
func (r Record) Field(key, fallback string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}

package medsafety

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/narrative"
	"github.com/lifeshield/health-intelligence/internal/subject"
)

type stubSynth struct {
	text       string
	lastPrompt string
}

func (s *stubSynth) FreeText(_ context.Context, prompt string) string {
	s.lastPrompt = prompt
	if s.text == "" {
		return narrative.FallbackFreeText
	}
	return s.text
}

func (s *stubSynth) StructuredJSON(_ context.Context, prompt string) string {
	s.lastPrompt = prompt
	return narrative.FallbackJSON
}

func TestAspirinWarfarinAlwaysDanger(t *testing.T) {
	e := NewEngine(&stubSynth{})

	f := e.Evaluate(context.Background(), Input{
		Profile:     subject.Profile{Age: 60},
		Medications: []string{"Aspirin", "WARFARIN"},
	})

	assert.Equal(t, LevelDanger, f.InteractionLevel)
	require.Len(t, f.Conflicts, 1)
	assert.Contains(t, f.Conflicts[0], "bleeding risk")
}

func TestDoubleNSAIDScenario(t *testing.T) {
	e := NewEngine(&stubSynth{})

	f := e.Evaluate(context.Background(), Input{
		Profile:     subject.Profile{Age: 45, Gender: "male", Weight: 90, HasHeartDisease: true},
		Medications: []string{"aspirin", "ibuprofen"},
	})

	assert.Equal(t, LevelDanger, f.InteractionLevel)
	found := false
	for _, c := range f.Conflicts {
		if strings.Contains(c, "Double NSAID") {
			found = true
		}
	}
	assert.True(t, found, "expected Double NSAID finding, got %v", f.Conflicts)
}

func TestOrganStressGatedContraindications(t *testing.T) {
	tests := []struct {
		name      string
		input     Input
		wantLevel string
	}{
		{
			name: "liver stress above threshold with hepatotoxic drug",
			input: Input{
				Medications: []string{"paracetamol"},
				Risk:        biorisk.Assessment{OrganStress: biorisk.OrganStress{Liver: 0.75}},
			},
			wantLevel: LevelDanger,
		},
		{
			name: "liver disease flag without stress",
			input: Input{
				Profile:     subject.Profile{HasLiverDisease: true},
				Medications: []string{"statin"},
			},
			wantLevel: LevelDanger,
		},
		{
			name: "kidney stress with NSAID",
			input: Input{
				Medications: []string{"naproxen"},
				Risk:        biorisk.Assessment{OrganStress: biorisk.OrganStress{Kidney: 0.8}},
			},
			wantLevel: LevelDanger,
		},
		{
			name: "cardio stress with stimulant is caution only",
			input: Input{
				Medications: []string{"caffeine"},
				Risk:        biorisk.Assessment{OrganStress: biorisk.OrganStress{Cardio: 0.8}},
			},
			wantLevel: LevelCaution,
		},
		{
			name: "stress below thresholds stays safe",
			input: Input{
				Medications: []string{"paracetamol", "naproxen", "caffeine"},
				Risk:        biorisk.Assessment{OrganStress: biorisk.OrganStress{Liver: 0.5, Kidney: 0.5, Cardio: 0.5}},
			},
			wantLevel: LevelSafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(&stubSynth{})
			f := e.Evaluate(context.Background(), tt.input)
			assert.Equal(t, tt.wantLevel, f.InteractionLevel)
		})
	}
}

func TestPregnancyAbsoluteContraindication(t *testing.T) {
	e := NewEngine(&stubSynth{})

	f := e.Evaluate(context.Background(), Input{
		Profile:     subject.Profile{IsPregnant: true},
		Medications: []string{"ibuprofen"},
	})

	assert.Equal(t, LevelDanger, f.InteractionLevel)
	assert.Contains(t, f.Conflicts, "Medication contraindicated in pregnancy.")
}

func TestCautionNeverDowngradesDanger(t *testing.T) {
	e := NewEngine(&stubSynth{})

	// Pair rule fires DANGER first, cardio stimulant rule fires CAUTION after.
	f := e.Evaluate(context.Background(), Input{
		Medications: []string{"aspirin", "warfarin", "caffeine"},
		Risk:        biorisk.Assessment{OrganStress: biorisk.OrganStress{Cardio: 0.9}},
	})

	assert.Equal(t, LevelDanger, f.InteractionLevel)
	assert.Len(t, f.Conflicts, 2)
}

func TestNarrativeFallbackUsesRawFindings(t *testing.T) {
	e := NewEngine(&stubSynth{}) // stub returns the fallback sentinel

	f := e.Evaluate(context.Background(), Input{
		Medications: []string{"aspirin", "warfarin"},
	})

	assert.Equal(t, "High bleeding risk between Aspirin and Warfarin.", f.Explanation)
	assert.Equal(t, LevelDanger, f.InteractionLevel, "verdict independent of narrative availability")
}

func TestNarrativeExplanationUsedWhenAvailable(t *testing.T) {
	synth := &stubSynth{text: "Avoid combining these blood thinners."}
	e := NewEngine(synth)

	f := e.Evaluate(context.Background(), Input{
		Profile:     subject.Profile{Name: "Ravi", Age: 58, Gender: "male"},
		Medications: []string{"aspirin", "warfarin"},
		Language:    "te",
		Symptoms:    []subject.Record{{"name": "dizziness", "severity": "mild"}},
	})

	assert.Equal(t, "Avoid combining these blood thinners.", f.Explanation)
	assert.Contains(t, synth.lastPrompt, "Telugu")
	assert.Contains(t, synth.lastPrompt, "dizziness (mild)")
	assert.Contains(t, synth.lastPrompt, "Ravi")
}

func TestNoMedicationsIsSafe(t *testing.T) {
	e := NewEngine(&stubSynth{})

	f := e.Evaluate(context.Background(), Input{})

	assert.Equal(t, LevelSafe, f.InteractionLevel)
	assert.Empty(t, f.Conflicts)
	assert.Equal(t, "No major drug interactions detected.", f.Explanation)
	assert.Equal(t, nextActionText, f.NextAction)
}

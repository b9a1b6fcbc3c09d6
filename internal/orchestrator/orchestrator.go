// Package orchestrator fuses the quantitative, rule-based, and generative
// branches into one unified response. The foundation risk estimate runs
// first; dependent branches then run concurrently and are joined with a
// full-join: a failed branch yields a nil slot, never a failed request.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/lifeshield/health-intelligence/internal/biorisk"
	"github.com/lifeshield/health-intelligence/internal/compliance"
	"github.com/lifeshield/health-intelligence/internal/medsafety"
	"github.com/lifeshield/health-intelligence/internal/narrative"
	"github.com/lifeshield/health-intelligence/internal/nutrition"
	"github.com/lifeshield/health-intelligence/internal/observability/metrics"
	"github.com/lifeshield/health-intelligence/internal/triage"
	"github.com/lifeshield/health-intelligence/internal/wellness"
	"github.com/lifeshield/health-intelligence/pkg/logging"
)

type branchKind string

const (
	branchSafety    branchKind = "medication_safety"
	branchTriage    branchKind = "triage"
	branchNutrition branchKind = "nutrition"
	branchWellness  branchKind = "wellness"
)

// branchResult is the tagged fan-in variant. Exactly one value pointer is
// set when err is nil, selected by kind.
type branchResult struct {
	kind      branchKind
	safety    *medsafety.Finding
	triage    *triage.Assessment
	nutrition *nutrition.Plan
	wellness  *wellness.Forecast
	err       error
}

// Orchestrator wires the foundation estimator and the four dependent
// branches. Stateless; one instance serves all requests.
type Orchestrator struct {
	estimator *biorisk.Estimator
	safety    *medsafety.Engine
	triage    *triage.Classifier
	nutrition *nutrition.Planner
	wellness  *wellness.Forecaster
	synth     narrative.Service
	logger    *logging.Logger
	metrics   *metrics.FusionMetrics
	tracer    trace.Tracer
	modelVer  string
	complyTag string
}

// Config carries the orchestrator's collaborators.
type Config struct {
	Estimator     *biorisk.Estimator
	Safety        *medsafety.Engine
	Triage        *triage.Classifier
	Nutrition     *nutrition.Planner
	Wellness      *wellness.Forecaster
	Synth         narrative.Service
	Logger        *logging.Logger
	Metrics       *metrics.FusionMetrics
	ModelVersion  string
	ComplianceTag string
}

// New creates a fusion orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		estimator: cfg.Estimator,
		safety:    cfg.Safety,
		triage:    cfg.Triage,
		nutrition: cfg.Nutrition,
		wellness:  cfg.Wellness,
		synth:     cfg.Synth,
		logger:    logger.Named("orchestrator"),
		metrics:   cfg.Metrics,
		tracer:    otel.Tracer("orchestrator"),
		modelVer:  cfg.ModelVersion,
		complyTag: cfg.ComplianceTag,
	}
}

// Orchestrate runs the full fusion pipeline for one request. It returns an
// error only for invalid input; every downstream failure degrades to a nil
// branch slot or a fallback narrative.
func (o *Orchestrator) Orchestrate(ctx context.Context, req UnifiedRequest) (*UnifiedResult, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrate")
	defer span.End()

	start := time.Now()
	if err := req.Validate(); err != nil {
		o.metrics.ObserveOrchestration("invalid", time.Since(start).Seconds())
		return nil, err
	}

	lang := req.EffectiveLanguage()

	// Foundation stage: every branch reads this assessment.
	risk := o.estimator.Assess(ctx, req.Profile)

	results := o.fanOut(ctx, req, lang, risk)

	result := &UnifiedResult{
		BioRisk:    &risk,
		Language:   lang,
		Disclaimer: compliance.Disclaimer,
	}
	for _, br := range results {
		if br.err != nil {
			o.logger.Warn("branch failed", "branch", string(br.kind), "error", br.err)
			o.metrics.ObserveBranchFailure(string(br.kind))
			continue
		}
		switch br.kind {
		case branchSafety:
			result.MedicationSafety = br.safety
		case branchTriage:
			result.Triage = br.triage
		case branchNutrition:
			result.Nutrition = br.nutrition
		case branchWellness:
			result.Wellness = br.wellness
		}
	}

	result.GuardianSummary = o.summarize(ctx, req, lang, result)
	result.Governance = compliance.NewGovernance(o.modelVer, o.complyTag, time.Since(start))

	o.metrics.ObserveOrchestration("ok", time.Since(start).Seconds())
	o.logger.Info("orchestration completed",
		"risk_level", risk.RiskLevel,
		"branches", len(results),
		"duration_ms", result.Governance.LatencyMS,
	)
	return result, nil
}

// fanOut launches the applicable branches concurrently and collects every
// result. Branches never observe each other; each gets read-only context.
func (o *Orchestrator) fanOut(ctx context.Context, req UnifiedRequest, lang string, risk biorisk.Assessment) []branchResult {
	meds := req.EffectiveMedications()

	var wg sync.WaitGroup
	out := make(chan branchResult, 4)

	launch := func(kind branchKind, run func() branchResult) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					out <- branchResult{kind: kind, err: fmt.Errorf("orchestrator: %s branch panic: %v", kind, r)}
				}
			}()
			out <- run()
		}()
	}

	if len(meds) > 0 {
		launch(branchSafety, func() branchResult {
			ctx, span := o.tracer.Start(ctx, string(branchSafety))
			defer span.End()
			f := o.safety.Evaluate(ctx, medsafety.Input{
				Profile:        req.Profile,
				Medications:    meds,
				ProblemContext: req.ProblemContext,
				Symptoms:       req.Symptoms,
				NutritionLogs:  req.NutritionLogs,
				ClinicalVault:  req.ClinicalVault,
				Language:       lang,
				Risk:           risk,
			})
			return branchResult{kind: branchSafety, safety: &f}
		})
	}

	if req.hasComplaint() {
		launch(branchTriage, func() branchResult {
			ctx, span := o.tracer.Start(ctx, string(branchTriage))
			defer span.End()
			a := o.triage.Classify(ctx, triage.Input{
				Profile:        req.Profile,
				Query:          req.Query,
				ProblemContext: req.ProblemContext,
				Symptoms:       req.Symptoms,
				ClinicalVault:  req.ClinicalVault,
				Language:       lang,
				Risk:           risk,
			})
			return branchResult{kind: branchTriage, triage: &a}
		})
	}

	launch(branchNutrition, func() branchResult {
		p := o.nutrition.Plan(req.Profile, risk)
		return branchResult{kind: branchNutrition, nutrition: &p}
	})

	launch(branchWellness, func() branchResult {
		ctx, span := o.tracer.Start(ctx, string(branchWellness))
		defer span.End()
		f := o.wellness.Forecast(ctx, wellness.Input{
			Profile:  req.Profile,
			Language: lang,
			Risk:     risk,
		})
		return branchResult{kind: branchWellness, wellness: &f}
	})

	go func() {
		wg.Wait()
		close(out)
	}()

	var results []branchResult
	for br := range out {
		results = append(results, br)
	}
	return results
}

// summarize asks the narrative layer for an empathetic one-paragraph summary.
// The deterministic digest is both the prompt material and the fallback.
func (o *Orchestrator) summarize(ctx context.Context, req UnifiedRequest, lang string, r *UnifiedResult) string {
	digest := buildDigest(req, r)

	prompt := fmt.Sprintf(`You are a caring family health guardian.
Summarize this health assessment for the subject in 2-3 warm, clear sentences.
Address the subject by name. Do not use medical jargon.

IMPORTANT: Respond in %s.

ASSESSMENT:
%s`, narrative.LanguageName(lang), digest)

	summary := o.synth.FreeText(ctx, prompt)
	if summary == narrative.FallbackFreeText {
		return digest
	}
	return summary
}

func buildDigest(req UnifiedRequest, r *UnifiedResult) string {
	var b strings.Builder
	name := strings.TrimSpace(req.Profile.Name)
	if name == "" {
		name = "The subject"
	}

	fmt.Fprintf(&b, "%s has a %s health risk (vitality %d/100).",
		name, strings.ToLower(r.BioRisk.RiskLevel), r.BioRisk.VitalityScore)
	if r.MedicationSafety != nil {
		fmt.Fprintf(&b, " Medication check: %s.", r.MedicationSafety.InteractionLevel)
	}
	if r.Triage != nil {
		fmt.Fprintf(&b, " Complaint urgency: %s.", r.Triage.TriageLevel)
	}
	if r.Nutrition != nil {
		fmt.Fprintf(&b, " Daily target: %d kcal.", r.Nutrition.RequiredCalories)
	}
	if r.Wellness != nil {
		fmt.Fprintf(&b, " Constitution: %s; 7-day seasonal risk: %.0f%%.",
			r.Wellness.Constitution, r.Wellness.Risk7Day*100)
	}
	fmt.Fprintf(&b, " Records on file: %d symptoms, %d clinical reports.",
		len(req.Symptoms), len(req.ClinicalVault))
	return b.String()
}

package biorisk

import (
	"context"

	"github.com/lifeshield/health-intelligence/internal/observability/metrics"
	"github.com/lifeshield/health-intelligence/internal/subject"
	"github.com/lifeshield/health-intelligence/pkg/logging"
)

// Estimator produces the Assessment for one subject. When a remote model is
// configured it is consulted first; any failure or malformed response falls
// back to the local deterministic model. The two models are not assumed to be
// numerically equivalent — whichever answered is the source of truth for the
// request.
type Estimator struct {
	remote  *RemoteModelClient
	logger  *logging.Logger
	metrics *metrics.FusionMetrics
}

// NewEstimator creates an estimator. remote may be nil for local-only mode.
func NewEstimator(remote *RemoteModelClient, logger *logging.Logger, m *metrics.FusionMetrics) *Estimator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Estimator{
		remote:  remote,
		logger:  logger,
		metrics: m,
	}
}

// Assess computes the quantitative risk assessment. It has no failure path:
// remote errors degrade to the local model, which is total over its clamped
// input domain.
func (e *Estimator) Assess(ctx context.Context, p subject.Profile) Assessment {
	features := FeaturesFromProfile(p)

	prob, level, vitality := e.predict(ctx, features, p)

	return Assessment{
		RiskProbability: prob,
		RiskLevel:       level,
		VitalityScore:   vitality,
		OrganStress:     organStress(p, prob),
	}
}

func (e *Estimator) predict(ctx context.Context, features Features, p subject.Profile) (float64, string, int) {
	if e.remote != nil {
		pred, err := e.remote.Predict(ctx, features)
		if err == nil {
			return pred.RiskProbability, pred.RiskLevel, pred.VitalityScore
		}
		e.logger.Warn("remote quantitative model unavailable, using local model",
			"error", err,
		)
		e.metrics.ObserveQuantFallback()
	}
	return scoreLocal(features, p)
}

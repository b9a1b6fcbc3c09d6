package biorisk

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Prediction is the remote quantitative model's response.
type Prediction struct {
	RiskProbability float64 `json:"risk_probability"`
	RiskLevel       string  `json:"risk_level"`
	Confidence      float64 `json:"confidence"`
	VitalityScore   int     `json:"vitality_score"`
	Recommendation  string  `json:"recommendation"`
}

type predictRequest struct {
	Features Features `json:"features"`
}

// RemoteModelClient calls the externally hosted quantitative risk model.
// One attempt per request; callers fall back to the local model on any error.
type RemoteModelClient struct {
	httpClient *resty.Client
	url        string
}

// NewRemoteModelClient creates a client for the given predict endpoint.
func NewRemoteModelClient(url string, timeout time.Duration) *RemoteModelClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RemoteModelClient{
		httpClient: client,
		url:        url,
	}
}

// Predict posts the normalized feature record and returns the model's
// prediction. A non-success status or an out-of-domain body is an error.
func (c *RemoteModelClient) Predict(ctx context.Context, features Features) (Prediction, error) {
	var out Prediction
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(predictRequest{Features: features}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return Prediction{}, fmt.Errorf("biorisk: remote model call failed: %w", err)
	}
	if resp.IsError() {
		return Prediction{}, fmt.Errorf("biorisk: remote model returned status %d", resp.StatusCode())
	}
	if err := validatePrediction(out); err != nil {
		return Prediction{}, err
	}
	return out, nil
}

func validatePrediction(p Prediction) error {
	if p.RiskProbability < 0 || p.RiskProbability > 1 {
		return fmt.Errorf("biorisk: remote risk probability %v out of [0,1]", p.RiskProbability)
	}
	switch p.RiskLevel {
	case LevelLow, LevelModerate, LevelHigh:
	default:
		return fmt.Errorf("biorisk: remote risk level %q unknown", p.RiskLevel)
	}
	if p.VitalityScore < 10 || p.VitalityScore > 100 {
		return fmt.Errorf("biorisk: remote vitality score %d out of [10,100]", p.VitalityScore)
	}
	return nil
}

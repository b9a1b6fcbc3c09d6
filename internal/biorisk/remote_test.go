package biorisk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeshield/health-intelligence/internal/subject"
)

func TestRemotePredictSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 45, req.Features.Age)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Prediction{
			RiskProbability: 0.62,
			RiskLevel:       LevelModerate,
			Confidence:      0.9,
			VitalityScore:   55,
		})
	}))
	defer srv.Close()

	client := NewRemoteModelClient(srv.URL, 5*time.Second)
	pred, err := client.Predict(context.Background(), Features{Age: 45, BMI: 28, GenHlth: 2})

	require.NoError(t, err)
	assert.Equal(t, 0.62, pred.RiskProbability)
	assert.Equal(t, LevelModerate, pred.RiskLevel)
	assert.Equal(t, 55, pred.VitalityScore)
}

func TestRemotePredictNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewRemoteModelClient(srv.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), Features{Age: 45})

	assert.ErrorContains(t, err, "status 503")
}

func TestRemotePredictMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"risk_probability": 7.5, "risk_level": "Low", "vitality_score": 80}`))
	}))
	defer srv.Close()

	client := NewRemoteModelClient(srv.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), Features{Age: 45})

	assert.ErrorContains(t, err, "out of [0,1]")
}

func TestRemotePredictUnknownLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"risk_probability": 0.5, "risk_level": "Extreme", "vitality_score": 80}`))
	}))
	defer srv.Close()

	client := NewRemoteModelClient(srv.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), Features{Age: 45})

	assert.ErrorContains(t, err, "unknown")
}

func TestEstimatorFallsBackToLocalModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	remote := NewRemoteModelClient(srv.URL, 2*time.Second)
	e := NewEstimator(remote, nil, nil)

	profile := subject.Profile{Age: 45, Gender: "male", Weight: 90, HasHeartDisease: true}
	got := e.Assess(context.Background(), profile)
	want := NewEstimator(nil, nil, nil).Assess(context.Background(), profile)

	assert.Equal(t, want, got, "remote failure must reproduce the local result exactly")
}

func TestEstimatorPrefersRemoteWhenHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Prediction{RiskProbability: 0.88, RiskLevel: LevelHigh, VitalityScore: 30})
	}))
	defer srv.Close()

	e := NewEstimator(NewRemoteModelClient(srv.URL, 2*time.Second), nil, nil)
	a := e.Assess(context.Background(), subject.Profile{Age: 30, Weight: 60})

	assert.Equal(t, 0.88, a.RiskProbability)
	assert.Equal(t, LevelHigh, a.RiskLevel)
	assert.Equal(t, 30, a.VitalityScore)
	// Organ stress still derived locally from the remote probability.
	assert.InDelta(t, 0.37, a.OrganStress.Cardio, 0.001)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifeshield/health-intelligence/internal/api/router"
	"github.com/lifeshield/health-intelligence/internal/biorisk"
	appconfig "github.com/lifeshield/health-intelligence/internal/config"
	"github.com/lifeshield/health-intelligence/internal/medsafety"
	"github.com/lifeshield/health-intelligence/internal/narrative"
	"github.com/lifeshield/health-intelligence/internal/nutrition"
	"github.com/lifeshield/health-intelligence/internal/observability/metrics"
	"github.com/lifeshield/health-intelligence/internal/orchestrator"
	"github.com/lifeshield/health-intelligence/internal/triage"
	"github.com/lifeshield/health-intelligence/internal/wellness"
	"github.com/lifeshield/health-intelligence/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting health-intelligence API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"narrative_provider", cfg.NarrativeProvider,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	fusionMetrics := metrics.NewFusionMetrics(reg)

	llmClient, modelID := buildLLMClient(cfg, logger)
	synth := narrative.NewSynthesizer(llmClient, modelID, cfg.NarrativeTimeout, logger, fusionMetrics)

	var remote *biorisk.RemoteModelClient
	if cfg.QuantModelURL != "" {
		remote = biorisk.NewRemoteModelClient(cfg.QuantModelURL, cfg.QuantModelTimeout)
		logger.Info("remote quantitative model configured", "url", cfg.QuantModelURL)
	}

	orch := orchestrator.New(orchestrator.Config{
		Estimator:     biorisk.NewEstimator(remote, logger, fusionMetrics),
		Safety:        medsafety.NewEngine(synth),
		Triage:        triage.NewClassifier(synth),
		Nutrition:     nutrition.NewPlanner(),
		Wellness:      wellness.NewForecaster(synth),
		Synth:         synth,
		Logger:        logger,
		Metrics:       fusionMetrics,
		ModelVersion:  cfg.ModelVersionTag,
		ComplianceTag: cfg.ComplianceTag,
	})

	handler := orchestrator.NewHandler(orchestrator.HandlerConfig{
		Orchestrator:        orch,
		Logger:              logger,
		Version:             cfg.ModelVersionTag,
		NarrativeConfigured: cfg.NarrativeConfigured(),
		QuantModelSet:       cfg.QuantModelURL != "",
	})

	r := router.New(&router.Config{
		Logger:             logger,
		Handler:            handler,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: 5,
		RateLimitBurst:     10,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// buildLLMClient selects the generative-language provider. A missing
// credential yields a nil client, which puts the synthesizer in disabled
// mode and the whole system in deterministic fallback.
func buildLLMClient(cfg *appconfig.Config, logger *logging.Logger) (narrative.LLMClient, string) {
	switch cfg.NarrativeProvider {
	case "bedrock":
		if cfg.BedrockModelID == "" {
			logger.Warn("BEDROCK_MODEL_ID not set, narrative synthesis disabled")
			return nil, ""
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			logger.Error("failed to load AWS config, narrative synthesis disabled", "error", err)
			return nil, ""
		}
		return narrative.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg)), cfg.BedrockModelID
	default:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set, narrative synthesis disabled")
			return nil, ""
		}
		client, err := narrative.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to init Gemini client, narrative synthesis disabled", "error", err)
			return nil, ""
		}
		return client, cfg.GeminiModelID
	}
}

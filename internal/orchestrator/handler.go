package orchestrator

import (
	"encoding/json"
	"net/http"

	"github.com/lifeshield/health-intelligence/pkg/logging"
)

// Handler exposes the orchestrator over HTTP.
type Handler struct {
	orch      *Orchestrator
	logger    *logging.Logger
	version   string
	narrative bool
	quantURL  bool
}

// HandlerConfig carries the handler's collaborators and health-report facts.
type HandlerConfig struct {
	Orchestrator        *Orchestrator
	Logger              *logging.Logger
	Version             string
	NarrativeConfigured bool
	QuantModelSet       bool
}

// NewHandler creates the HTTP handler for orchestration and health.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		orch:      cfg.Orchestrator,
		logger:    logger.Named("http"),
		version:   cfg.Version,
		narrative: cfg.NarrativeConfigured,
		quantURL:  cfg.QuantModelSet,
	}
}

// Orchestrate handles POST /orchestrate.
func (h *Handler) Orchestrate(w http.ResponseWriter, r *http.Request) {
	var req UnifiedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orch.Orchestrate(r.Context(), req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	engine := "rule-based"
	if h.narrative {
		engine = "generative"
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"version":           h.version,
		"narrative_engine":  engine,
		"quant_model_bound": h.quantURL,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

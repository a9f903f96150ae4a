package handler

import (
	"errors"
	"net/http"

	"language-coach-server/internal/domain"

	"github.com/gorilla/mux"
)

// ScenarioHandler serves the read-only scenario catalogue.
type ScenarioHandler struct {
	scenarioRepo domain.ScenarioRepository
	logger       domain.Logger
}

func NewScenarioHandler(scenarioRepo domain.ScenarioRepository, logger domain.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		scenarioRepo: scenarioRepo,
		logger:       logger,
	}
}

// ListScenarios handles GET /scenarios
func (h *ScenarioHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	token, _ := GetTokenFromContext(r)

	scenarios, err := h.scenarioRepo.List(r.Context(), token)
	if err != nil {
		h.logger.Error("Failed to list scenarios", err)
		writeError(w, http.StatusInternalServerError, "Failed to list scenarios")
		return
	}

	writeJSON(w, http.StatusOK, scenarios)
}

// GetScenario handles GET /scenarios/{id}
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	token, _ := GetTokenFromContext(r)

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "Scenario ID is required")
		return
	}

	scenario, err := h.scenarioRepo.GetByID(r.Context(), id, token)
	if err != nil {
		if errors.Is(err, domain.ErrScenarioNotFound) {
			writeError(w, http.StatusNotFound, "Scenario not found")
			return
		}
		h.logger.Error("Failed to get scenario", err, "scenario_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get scenario")
		return
	}

	writeJSON(w, http.StatusOK, scenario)
}

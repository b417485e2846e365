package scenario

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"voicewidget/internal/model/scenario"
	"voicewidget/pkg/utils"
)

// Handler serves the scenario catalog to the widget UI.
type Handler struct {
	scenarios scenario.Store
}

// New creates the scenario handler.
func New(scenarios scenario.Store) *Handler {
	return &Handler{scenarios: scenarios}
}

// RegisterRoutes mounts the catalog endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/scenarios", h.handleListScenarios)
}

func (h *Handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.scenarios.List())
}

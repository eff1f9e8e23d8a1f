package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/application/services"
)

// StatusHandler reports indexing progress
type StatusHandler struct {
	service *services.StatusService
	logger  *zap.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(service *services.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		logger:  logger,
	}
}

// GetStatus handles GET /api/v1/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.GetStatus(r.Context())
	if err != nil {
		h.logger.Error("Failed to get status", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get status")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

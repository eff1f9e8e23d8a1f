package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/application/services"
)

// HoldersHandler handles HTTP requests for holder balance ledgers
type HoldersHandler struct {
	service *services.HoldersService
	logger  *zap.Logger
}

// NewHoldersHandler creates a new holders handler
func NewHoldersHandler(service *services.HoldersService, logger *zap.Logger) *HoldersHandler {
	return &HoldersHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers holder routes
func (h *HoldersHandler) RegisterRoutes(r chi.Router) {
	r.Get("/holders/{address}", h.GetHolder)
	r.Get("/holders/{address}/tokens/{contract}", h.GetTokenBalance)
	r.Get("/holders/{address}/tokens/{contract}/onchain", h.GetOnChainBalance)
}

// GetHolder handles GET /api/v1/holders/{address}
func (h *HoldersHandler) GetHolder(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}
	address = strings.ToLower(address)

	response, err := h.service.GetHolder(r.Context(), address)
	if err != nil {
		h.logger.Error("Failed to get holder", zap.Error(err), zap.String("address", address))
		respondError(w, http.StatusInternalServerError, "Failed to get holder")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "holder not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTokenBalance handles GET /api/v1/holders/{address}/tokens/{contract}
func (h *HoldersHandler) GetTokenBalance(w http.ResponseWriter, r *http.Request) {
	address, contract, ok := h.parseHolderToken(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetTokenBalance(r.Context(), address, contract)
	if err != nil {
		h.logger.Error("Failed to get token balance",
			zap.Error(err),
			zap.String("holder", address),
			zap.String("contract", contract),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get token balance")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "balance not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetOnChainBalance handles GET /api/v1/holders/{address}/tokens/{contract}/onchain
func (h *HoldersHandler) GetOnChainBalance(w http.ResponseWriter, r *http.Request) {
	address, contract, ok := h.parseHolderToken(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetOnChainBalance(r.Context(), address, contract)
	if errors.Is(err, services.ErrChainUnavailable) {
		respondError(w, http.StatusServiceUnavailable, "chain node not configured")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get on-chain balance",
			zap.Error(err),
			zap.String("holder", address),
			zap.String("contract", contract),
		)
		respondError(w, http.StatusBadGateway, "Failed to query contract")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

func (h *HoldersHandler) parseHolderToken(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	address := chi.URLParam(r, "address")
	contract := chi.URLParam(r, "contract")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid holder address format")
		return "", "", false
	}
	if !isValidAddress(contract) {
		respondError(w, http.StatusBadRequest, "Invalid contract address format")
		return "", "", false
	}

	return strings.ToLower(address), strings.ToLower(contract), true
}

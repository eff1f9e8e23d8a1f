package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/ledger-indexer/internal/application/services"
	"github.com/bimakw/ledger-indexer/internal/domain/entities"
)

// TransactionHandler handles HTTP requests for indexed transactions
type TransactionHandler struct {
	service *services.TransactionService
	logger  *zap.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service *services.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers transaction routes
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/transactions/{hash}", h.GetTransaction)
	r.Get("/addresses/{address}/transactions", h.GetAddressTransactions)
}

// GetTransaction handles GET /api/v1/transactions/{hash}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if !isValidHash(hash) {
		respondError(w, http.StatusBadRequest, "Invalid transaction hash format")
		return
	}

	response, err := h.service.GetTransaction(r.Context(), strings.ToLower(hash))
	if err != nil {
		h.logger.Error("Failed to get transaction", zap.Error(err), zap.String("hash", hash))
		respondError(w, http.StatusInternalServerError, "Failed to get transaction")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetAddressTransactions handles GET /api/v1/addresses/{address}/transactions
//
// Query parameters:
//   - limit: max results (default 100, max 1000)
//   - offset: pagination offset
func (h *TransactionHandler) GetAddressTransactions(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	filter := entities.DefaultTransactionFilter(strings.ToLower(address))
	filter.Limit = queryInt(r, "limit", filter.Limit)
	filter.Offset = queryInt(r, "offset", 0)

	response, err := h.service.GetAddressTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to get transactions", zap.Error(err), zap.String("address", address))
		respondError(w, http.StatusInternalServerError, "Failed to get transactions")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

package handlers

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// NetworkSwitcher is a chain client whose endpoint can be replaced at runtime
type NetworkSwitcher interface {
	SetNetwork(ctx context.Context, rpcURL string) error
	RPCURL() string
	ChainID() *big.Int
}

// NetworkHandler exposes the chain endpoint of a running indexer
type NetworkHandler struct {
	client NetworkSwitcher
	logger *zap.Logger
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(client NetworkSwitcher, logger *zap.Logger) *NetworkHandler {
	return &NetworkHandler{
		client: client,
		logger: logger,
	}
}

// SetNetworkRequest is the body of POST /admin/network
type SetNetworkRequest struct {
	RPCURL string `json:"rpc_url"`
}

// NetworkResponse describes the active chain endpoint
type NetworkResponse struct {
	RPCURL  string `json:"rpc_url"`
	ChainID string `json:"chain_id"`
}

// GetNetwork handles GET /admin/network
func (h *NetworkHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.current())
}

// SetNetwork handles POST /admin/network
func (h *NetworkHandler) SetNetwork(w http.ResponseWriter, r *http.Request) {
	var req SetNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := url.Parse(req.RPCURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		respondError(w, http.StatusBadRequest, "Invalid rpc_url")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.client.SetNetwork(ctx, req.RPCURL); err != nil {
		h.logger.Error("Failed to switch network", zap.String("rpc_url", req.RPCURL), zap.Error(err))
		respondError(w, http.StatusBadGateway, "Failed to switch network: "+err.Error())
		return
	}

	h.logger.Info("Switched network", zap.String("rpc_url", req.RPCURL))
	respondJSON(w, http.StatusOK, h.current())
}

func (h *NetworkHandler) current() NetworkResponse {
	resp := NetworkResponse{RPCURL: h.client.RPCURL()}
	if id := h.client.ChainID(); id != nil {
		resp.ChainID = id.String()
	}
	return resp
}

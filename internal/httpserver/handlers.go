package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"tradebridge/internal/app"
	"tradebridge/internal/ports"
)

// maxBodyBytes caps inbound webhook bodies; alert payloads are tiny.
const maxBodyBytes = 1 << 20

// Handler serves the webhook and operational endpoints.
type Handler struct {
	service    *app.Service
	exchange   ports.ExchangeClient
	logger     ports.Logger
	quoteAsset string
	testnet    bool
}

func (h *Handler) mode() string {
	if h.testnet {
		return "Testnet"
	}
	return "Live"
}

// Webhook receives one trade signal and runs it through the orchestrator.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn(r.Context(), "Failed to read webhook body", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusBadRequest, app.Response{Success: false, Error: "failed to read request body"})
		return
	}

	result := h.service.HandleSignal(r.Context(), body)
	writeJSON(w, result.StatusCode, result.Response)
}

// Status reports the service mode, for deployment sanity checks.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "running",
		"exchange":  "Bybit",
		"mode":      h.mode(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ping is a plain liveness probe.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "pong",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Balance returns the quote-asset wallet balance.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.exchange.GetWalletBalance(r.Context(), h.quoteAsset)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ports.ErrAuthenticationFailed):
			status = http.StatusUnauthorized
		case errors.Is(err, ports.ErrExchangeUnavailable):
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"asset":     h.quoteAsset,
		"total":     balance,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// TestConnection verifies exchange reachability with a server-time round trip.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	serverTime, err := h.exchange.GetServerTime(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"connection":  "OK",
		"server_time": serverTime.UTC().Format(time.RFC3339),
		"mode":        h.mode(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

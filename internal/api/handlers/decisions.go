package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/tradewind/internal/decision"
	"github.com/wonny/tradewind/pkg/logger"
)

// DecisionsHandler exposes the latest decision ledger over HTTP
type DecisionsHandler struct {
	ledger *decision.Ledger
	logger *logger.Logger
}

// NewDecisionsHandler creates a new decisions handler
func NewDecisionsHandler(ledger *decision.Ledger, log *logger.Logger) *DecisionsHandler {
	return &DecisionsHandler{
		ledger: ledger,
		logger: log,
	}
}

// Latest returns the current decision ledger
// GET /api/decisions/latest
func (h *DecisionsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.ledger.Read()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		if errors.Is(err, decision.ErrLedgerNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "no decision ledger yet"})
			return
		}
		h.logger.WithError(err).Error("Failed to read decision ledger")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to read ledger"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":     len(decisions),
		"decisions": decisions,
	})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"gameitem-nft/internal/config"
	"gameitem-nft/internal/ethereum"
	"gameitem-nft/internal/storage"
	"gameitem-nft/internal/token"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeError translates the error taxonomy into HTTP statuses. Caller
// mistakes map to 4xx, ledger trouble to the 502/503/504 family, and
// everything unclassified to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, token.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, token.ErrTokenNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, token.ErrConfirmationTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, token.ErrMintEntryPointNotFound),
		errors.Is(err, token.ErrTransactionReverted),
		errors.Is(err, ethereum.ErrCallReverted):
		status = http.StatusBadGateway
	case errors.Is(err, ethereum.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, config.ErrConfiguration):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

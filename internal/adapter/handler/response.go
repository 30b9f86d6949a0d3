package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps an error kind to its HTTP status. Internal failures are
// logged and their detail is not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: domain.ReasonOf(err)}

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
		resp.Message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateRequest):
		status = http.StatusConflict
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}

	writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", domain.ErrInvalidRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

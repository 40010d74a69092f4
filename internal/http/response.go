package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"esgishoma-backend-go/internal/services"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// WriteServiceError maps service-layer errors onto HTTP statuses. Anything
// unrecognized becomes a generic 500 so internals never leak.
func WriteServiceError(w http.ResponseWriter, err error) {
	var svcErr services.ServiceError
	if errors.As(err, &svcErr) {
		WriteError(w, svcErr.Status, svcErr.Message)
		return
	}
	var lockErr services.LockoutError
	if errors.As(err, &lockErr) {
		WriteError(w, http.StatusTooManyRequests, lockErr.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

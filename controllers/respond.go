package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"matchday_server/services"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	http.Error(w, fmt.Sprintf(`{"error": %q}`, message), status)
}

// writeServiceError maps the service error kinds onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidTeam),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrInvalidPin),
		errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("❌ Internal error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

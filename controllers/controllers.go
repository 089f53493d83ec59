package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"squadfinder_server/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps the error taxonomy onto HTTP statuses. Conflicts never
// reach here: the match engine resolves them internally.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case models.IsAuthorization(err):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrStorageUnavailable):
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable, retry later"})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// decodeAndValidate decodes a JSON body into req and runs its validate tags.
// Malformed input is rejected before any storage access.
func decodeAndValidate(r *http.Request, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return models.NewValidationError("invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return models.NewValidationError("missing or invalid fields: %v", err)
	}
	return nil
}

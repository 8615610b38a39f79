package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"carfinder/logging"
	"carfinder/models"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logf(logging.LevelWarn, "http", "encode response: %v", err)
	}
}

// writeError maps error codes onto HTTP statuses and writes a
// {success:false, error} envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch models.ErrorCode(err) {
	case models.ErrValidation:
		status = http.StatusBadRequest
	case models.ErrNotFound:
		status = http.StatusNotFound
	case models.ErrUpstream:
		status = http.StatusBadGateway
	default:
		logging.Logf(logging.LevelError, "http", "%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, models.Result{Success: false, Error: models.ErrorMessage(err)})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Errorf(models.ErrValidation, "Invalid JSON: %v", err)
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Errorf(models.ErrValidation, "invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

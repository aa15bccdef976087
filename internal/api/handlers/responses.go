package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ferialibre/listings-api/internal/category"
	"github.com/ferialibre/listings-api/internal/listing"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service layer's sentinel errors onto HTTP
// codes. Anything unrecognized is a 500 with a generic body: raw driver
// errors go to the log, never to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listing.ErrNotFound), errors.Is(err, listing.ErrMediaNotFound), errors.Is(err, category.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, listing.ErrAlreadyDeleted), errors.Is(err, listing.ErrDeleted),
		errors.Is(err, listing.ErrInvalidStatus), errors.Is(err, listing.ErrMediaLimit):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

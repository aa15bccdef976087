package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ferialibre/listings-api/internal/queue"
)

type AdminHandler struct {
	queue *queue.Client
}

func NewAdminHandler(q *queue.Client) *AdminHandler {
	return &AdminHandler{queue: q}
}

// Purge enqueues an immediate run of the listing purge job instead of
// waiting for the nightly schedule. retention_days 0 means the worker's
// configured default.
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RetentionDays int `json:"retention_days"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if body.RetentionDays < 0 {
		writeError(w, http.StatusBadRequest, "retention_days must be non-negative")
		return
	}

	if err := h.queue.EnqueueListingPurge(queue.ListingPurgePayload{RetentionDays: body.RetentionDays}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to enqueue purge")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "enqueued"})
}

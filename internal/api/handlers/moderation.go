package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ferialibre/listings-api/internal/listing"
	"github.com/ferialibre/listings-api/internal/moderation"
)

type ModerationHandler struct {
	svc    *listing.Service
	engine *moderation.Engine
}

func NewModerationHandler(svc *listing.Service, engine *moderation.Engine) *ModerationHandler {
	return &ModerationHandler{svc: svc, engine: engine}
}

// History returns a listing's moderation ledger, newest first.
func (h *ModerationHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	records, err := h.svc.ModerationHistory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": records, "count": len(records)})
}

// Manual records a moderator's decision for a listing.
func (h *ModerationHandler) Manual(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	var body struct {
		ModeratorID string `json:"moderator_id"`
		Action      string `json:"action"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Action != "aprobado" && body.Action != "rechazado" {
		writeError(w, http.StatusBadRequest, `action must be "aprobado" or "rechazado"`)
		return
	}
	if strings.TrimSpace(body.Reason) == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	record, err := h.svc.ModerateManual(r.Context(), id, body.ModeratorID, body.Action, body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Check runs the verdict engine over ad-hoc text without persisting
// anything. Useful for previewing a listing before submission.
func (h *ModerationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Text        string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var verdict moderation.Verdict
	if body.Text != "" {
		verdict = h.engine.EvaluateText(body.Text)
	} else {
		verdict = h.engine.Evaluate(body.Title, body.Description)
	}

	writeJSON(w, http.StatusOK, verdict)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ferialibre/listings-api/internal/listing"
)

type ListingHandler struct {
	svc *listing.Service
}

func NewListingHandler(svc *listing.Service) *ListingHandler {
	return &ListingHandler{svc: svc}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req listing.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateCreate(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	l, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

func validateCreate(req listing.CreateRequest) string {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return "title is required"
	case len(req.Title) > 80:
		return "title exceeds 80 characters"
	case strings.TrimSpace(req.Description) == "":
		return "description is required"
	case len(req.Description) > 500:
		return "description exceeds 500 characters"
	case req.Price < 0:
		return "price must be non-negative"
	case strings.TrimSpace(req.SellerID) == "":
		return "seller_id is required"
	}
	return ""
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	listings, err := h.svc.List(r.Context(), includeDeleted, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"listings": listings, "count": len(listings)})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	detail, err := h.svc.GetDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	var req listing.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	if err := h.svc.SoftDelete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"message": "listing will be permanently removed after the retention window",
	})
}

func (h *ListingHandler) ForceDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	removed, err := h.svc.ForceDelete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "purged", "media_removed": removed})
}

func (h *ListingHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.svc.ChangeStatus(r.Context(), id, body.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

func (h *ListingHandler) AddMedia(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	var m listing.MediaInput
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(m.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	media, err := h.svc.AddMedia(r.Context(), id, m)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, media)
}

func (h *ListingHandler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media ID")
		return
	}

	if err := h.svc.RemoveMedia(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

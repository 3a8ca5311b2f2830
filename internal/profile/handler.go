package profile

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"salespilot/prospector-service/internal/model"
)

// Handler exposes detail extraction over HTTP.
//
// Routes:
//
//	POST /profiles/extract → deep-extract one profile for the operator
type Handler struct {
	extractor *Extractor
}

// NewHandler returns a configured Handler.
func NewHandler(extractor *Extractor) *Handler {
	return &Handler{extractor: extractor}
}

// RegisterRoutes mounts the profile routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/profiles/extract", h.handleExtract)
}

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	operatorID := r.Header.Get("x-operator-id")
	if operatorID == "" {
		jsonError(w, "missing x-operator-id header", http.StatusUnauthorized)
		return
	}

	var body struct {
		ProfileURL string `json:"profileUrl"`
		NameHint   string `json:"nameHint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProfileURL == "" {
		jsonError(w, "body must contain profileUrl", http.StatusBadRequest)
		return
	}

	detail, err := h.extractor.ExtractDetail(r.Context(), operatorID, body.ProfileURL, body.NameHint)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			jsonError(w, vErr.Msg, http.StatusBadRequest)
		case errors.Is(err, model.ErrNotAuthenticated):
			jsonError(w, "operator is not authenticated", http.StatusUnauthorized)
		case errors.Is(err, model.ErrSourceBlocked):
			jsonError(w, "source blocked the session — re-authenticate and retry later", http.StatusConflict)
		default:
			log.Printf("[prospector] extractDetail error: %v", err)
			jsonError(w, "profile extraction failed", http.StatusBadGateway)
		}
		return
	}

	jsonOK(w, detail)
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

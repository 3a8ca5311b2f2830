package search

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"salespilot/prospector-service/internal/model"
)

// Handler exposes the search pipeline over HTTP.
//
// All routes expect an x-operator-id header forwarded by the CRM gateway.
//
// Routes:
//
//	POST /search → run one people search for the operator
type Handler struct {
	orch *Orchestrator
}

// NewHandler returns a configured Handler.
func NewHandler(orch *Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// RegisterRoutes mounts the search routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/search", h.handleSearch)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	operatorID := r.Header.Get("x-operator-id")
	if operatorID == "" {
		jsonError(w, "missing x-operator-id header", http.StatusUnauthorized)
		return
	}

	var criteria model.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	resp, err := h.orch.Search(r.Context(), operatorID, criteria)
	if err != nil {
		writePipelineError(w, "search", err)
		return
	}
	jsonOK(w, resp)
}

// writePipelineError maps the pipeline error taxonomy onto HTTP statuses.
func writePipelineError(w http.ResponseWriter, op string, err error) {
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		jsonError(w, vErr.Msg, http.StatusBadRequest)
	case errors.Is(err, model.ErrNotAuthenticated):
		jsonError(w, "operator is not authenticated", http.StatusUnauthorized)
	case errors.Is(err, model.ErrSourceBlocked):
		jsonError(w, "source blocked the session — re-authenticate and retry later", http.StatusConflict)
	case errors.Is(err, model.ErrSearchFailed):
		log.Printf("[prospector] %s failed: %v", op, err)
		jsonError(w, "search failed on the source site", http.StatusBadGateway)
	default:
		log.Printf("[prospector] %s error: %v", op, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
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

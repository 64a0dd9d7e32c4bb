package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handsign/internal/store"
)

// RoundHandler serves the recorded rounds.
type RoundHandler struct {
	store *store.Store
}

// NewRoundHandler creates a new RoundHandler with the given store.
func NewRoundHandler(s *store.Store) *RoundHandler {
	return &RoundHandler{store: s}
}

type listRoundsResponse struct {
	Rounds []*store.Round `json:"rounds"`
}

// List handles GET /api/rounds, newest first.
func (h *RoundHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	rounds, err := h.store.Rounds().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rounds")
		return
	}
	if rounds == nil {
		rounds = []*store.Round{}
	}
	writeJSON(w, http.StatusOK, listRoundsResponse{Rounds: rounds})
}

// Get handles GET /api/rounds/{id}.
func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	round, err := h.store.Rounds().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Round not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get round")
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// Stats handles GET /api/rounds/stats.
func (h *RoundHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Rounds().Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

package api

import (
	"net/http"

	"github.com/ayusman/handsign/internal/store"
)

// RecognitionHandler serves stored gesture recognitions.
type RecognitionHandler struct {
	store *store.Store
}

// NewRecognitionHandler creates a new RecognitionHandler with the given store.
func NewRecognitionHandler(s *store.Store) *RecognitionHandler {
	return &RecognitionHandler{store: s}
}

type listRecognitionsResponse struct {
	Recognitions []*store.Recognition `json:"recognitions"`
}

// List handles GET /api/recognitions, newest first.
func (h *RecognitionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	recs, err := h.store.Recognitions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recognitions")
		return
	}
	if recs == nil {
		recs = []*store.Recognition{}
	}
	writeJSON(w, http.StatusOK, listRecognitionsResponse{Recognitions: recs})
}

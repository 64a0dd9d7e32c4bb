package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/handsign/internal/ssml"
)

type buildSSMLRequest struct {
	Language string         `json:"language"`
	Voice    string         `json:"voice"`
	Segments []ssml.Segment `json:"segments"`
}

// BuildSSML handles POST /api/ssml. It renders the posted segments as an
// SSML document. Invalid segments are rejected with 400.
func BuildSSML(w http.ResponseWriter, r *http.Request) {
	var req buildSSMLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Segments) == 0 {
		writeError(w, http.StatusBadRequest, "At least one segment is required")
		return
	}

	doc := ssml.New(ssml.WithLanguage(req.Language), ssml.WithVoice(req.Voice))
	doc.Segments = req.Segments

	out, err := doc.Marshal()
	if err != nil {
		if errors.Is(err, ssml.ErrInvalidPhonemeAnchor) ||
			errors.Is(err, ssml.ErrMissingPhoneme) ||
			errors.Is(err, ssml.ErrInvalidLanguage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build SSML")
		return
	}

	w.Header().Set("Content-Type", "application/ssml+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

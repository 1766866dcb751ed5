package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/opensourcefinder/server/internal/service"
)

type KeywordsHandler struct {
	suggester service.KeywordSuggester
}

func NewKeywordsHandler(suggester service.KeywordSuggester) *KeywordsHandler {
	return &KeywordsHandler{suggester: suggester}
}

// Suggest returns one-word tag suggestions for a free-text description.
// The endpoint is open to any origin so the submission form can call it
// before the user signs in.
func (h *KeywordsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var input struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	keywords := h.suggester.Suggest(r.Context(), strings.TrimSpace(input.Description))
	if keywords == nil {
		keywords = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"keywords": keywords})
}

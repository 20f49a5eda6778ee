package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/pages"
)

// preferencesRequest is the JSON body of a preferences update. Collection,
// when set, asks for the re-derived list of that collection in return.
type preferencesRequest struct {
	models.PreferencesUpdate
	Collection string `json:"collection,omitempty"`
}

// handleUpdatePreferences accepts JSON from API clients and form posts from
// the search controls. Form posts get the list fragment back.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	jsonBody := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	if jsonBody {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid form")
			return
		}
		if vs, ok := r.PostForm["searchQuery"]; ok && len(vs) > 0 {
			req.SearchQuery = &vs[0]
		}
		if vs, ok := r.PostForm["sortOption"]; ok && len(vs) > 0 {
			req.SortOption = &vs[0]
		}
		req.Collection = r.PostForm.Get("collection")
	}

	ctx := r.Context()
	sess := sessionFrom(ctx)
	prefs, err := s.updatePreferences(ctx, sess, req.PreferencesUpdate)
	if err != nil {
		s.logger.Error("save preferences failed", slog.String("session", sess.ID), slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	if jsonBody || req.Collection == "" {
		if isHTMX(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondJSON(w, http.StatusOK, prefs)
		return
	}
	c, ok := models.LookupCollection(req.Collection)
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown collection")
		return
	}
	s.respondHTML(w, r, http.StatusOK, pages.ListFragment(listData(c, sess.View(c), prefs)))
}

func (s *Server) handleAPIGetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondJSON(w, http.StatusOK, s.preferences(ctx, sessionFrom(ctx)))
}

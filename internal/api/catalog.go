package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/view"
)

// apiCollection resolves {collection} for the JSON endpoints.
func apiCollection(w http.ResponseWriter, r *http.Request) (models.Collection, bool) {
	c, ok := models.LookupCollection(chi.URLParam(r, "collection"))
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown collection")
	}
	return c, ok
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Server) handleAPICollections(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.Collections())
}

// handleAPIPage proxies one page of a collection in the uniform shape.
func (s *Server) handleAPIPage(w http.ResponseWriter, r *http.Request) {
	c, ok := apiCollection(w, r)
	if !ok {
		return
	}
	page, ok := queryInt(r, "page", 1)
	if !ok || page < 1 {
		respondError(w, http.StatusBadRequest, "Invalid page")
		return
	}
	limit, ok := queryInt(r, "limit", c.Limit)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	p, err := s.catalog.FetchPage(r.Context(), c.Slug, page, limit)
	if err != nil {
		s.logger.Warn("fetch page failed", slog.String("collection", c.Slug), slog.Int("page", page), slog.String("error", err.Error()))
		respondError(w, catalogStatus(err), err.Error())
		return
	}
	items := p.Items
	if items == nil {
		items = []models.Entity{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": p.Total,
		"page":  page,
	})
}

// handleAPIView returns the session's current view of a collection, filtered
// and sorted with the session preferences.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	c, ok := apiCollection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	sess := sessionFrom(ctx)
	data := listData(c, sess.View(c), s.preferences(ctx, sess))
	items := data.Items
	if items == nil {
		items = []models.Entity{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":       items,
		"displayed":   data.Summary.Displayed,
		"loaded":      data.Summary.Loaded,
		"total":       data.Summary.Total,
		"state":       data.State.String(),
		"message":     data.Message,
		"preferences": data.Prefs,
		"sort":        view.ParseSortMode(data.Prefs.SortOption),
	})
}

// handleAPIDetail returns an entity with its resolved relation list.
func (s *Server) handleAPIDetail(w http.ResponseWriter, r *http.Request) {
	c, ok := apiCollection(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	d, err := s.resolver.Resolve(r.Context(), c, id)
	if err != nil {
		s.logger.Warn("resolve detail failed", slog.String("collection", c.Slug), slog.Int("id", id), slog.String("error", err.Error()))
		respondError(w, catalogStatus(err), err.Error())
		return
	}
	resp := map[string]interface{}{"item": d.Parent}
	if c.Relation != nil {
		related := d.Related
		if related == nil {
			related = []models.Entity{}
		}
		resp["related"] = related
	}
	respondJSON(w, http.StatusOK, resp)
}

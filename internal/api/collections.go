package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/meur/dattebayo/internal/catalog"
	"github.com/meur/dattebayo/internal/loader"
	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/pages"
	"github.com/meur/dattebayo/internal/session"
	"github.com/meur/dattebayo/internal/view"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// page renders body inside the layout, or alone for HTMX navigation.
func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, title, active string, body templ.Component) {
	if isHTMX(r) {
		s.respondHTML(w, r, status, body)
		return
	}
	s.respondHTML(w, r, status, pages.Layout(title, models.Collections(), active, body))
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, message string) {
	s.page(w, r, http.StatusNotFound, "Not found", "", pages.ErrorPage(http.StatusNotFound, message))
}

// collection resolves the {collection} URL parameter, answering 404 itself
// when the slug is unknown.
func (s *Server) collection(w http.ResponseWriter, r *http.Request) (models.Collection, bool) {
	slug := chi.URLParam(r, "collection")
	c, ok := models.LookupCollection(slug)
	if !ok {
		s.notFound(w, r, "Unknown collection "+strconv.Quote(slug))
	}
	return c, ok
}

// listData derives what a list view shows from the loader state and the
// session preferences.
func listData(c models.Collection, l *session.EntityLoader, prefs models.Preferences) pages.ListData {
	snap := l.Snapshot()
	items := view.Derive(snap.Items, prefs.SearchQuery, view.ParseSortMode(prefs.SortOption), c.RelationKey())
	return pages.ListData{
		Collection: c,
		Prefs:      prefs,
		Items:      items,
		Summary:    view.Summary{Displayed: len(items), Loaded: len(snap.Items), Total: snap.Total},
		State:      snap.State,
		Message:    snap.Message,
		Trigger:    l.Trigger(),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "Home", "", pages.Home(models.Collections()))
}

// handleList opens a fresh view of the collection. Navigating to a list
// always starts over from page 1.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	sess := sessionFrom(ctx)
	l := sess.Reset(c)

	var err error
	if c.Eager {
		err = l.LoadAll(ctx)
	} else {
		err = l.Start(ctx)
	}
	if err != nil {
		s.logger.Warn("initial load failed", slog.String("collection", c.Slug), slog.String("error", err.Error()))
	}

	data := listData(c, l, s.preferences(ctx, sess))
	s.page(w, r, http.StatusOK, c.Label, c.Slug, pages.ListPage(data))
}

// handleListItems is the advance trigger endpoint. It answers 204 when the
// signal does not lead to a fetch so the client keeps its current list.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	sess := sessionFrom(ctx)
	l := sess.View(c)
	prefs := s.preferences(ctx, sess)

	q := r.URL.Query()
	sig := loader.Signal{Kind: loader.ParseTrigger(q.Get("trigger")), Query: prefs.SearchQuery}
	if sig.Kind == loader.TriggerScroll {
		pos, ok := parsePosition(r)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		sig.Position = pos
	}

	advanced, err := l.Signal(ctx, sig)
	if err != nil {
		s.logger.Warn("advance failed", slog.String("collection", c.Slug), slog.String("error", err.Error()))
	}
	if !advanced && err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.respondHTML(w, r, http.StatusOK, pages.ListFragment(listData(c, l, prefs)))
}

// parsePosition reads the scroll geometry sent with a scroll signal.
func parsePosition(r *http.Request) (loader.Position, bool) {
	q := r.URL.Query()
	var vals [3]float64
	for i, key := range []string{"innerHeight", "scrollTop", "scrollHeight"} {
		v, err := strconv.ParseFloat(q.Get(key), 64)
		if err != nil {
			return loader.Position{}, false
		}
		vals[i] = v
	}
	return loader.Position{ViewportHeight: vals[0], ScrollTop: vals[1], ScrollHeight: vals[2]}, true
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	sess := sessionFrom(ctx)
	l := sess.View(c)

	var err error
	if c.Eager {
		// LoadAll re-requests the failed page and then finishes the crawl.
		err = l.LoadAll(ctx)
	} else {
		_, err = l.Retry(ctx)
	}
	if err != nil {
		s.logger.Warn("retry failed", slog.String("collection", c.Slug), slog.String("error", err.Error()))
	}
	s.respondHTML(w, r, http.StatusOK, pages.ListFragment(listData(c, l, s.preferences(ctx, sess))))
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		s.page(w, r, http.StatusBadRequest, "Bad request", c.Slug, pages.ErrorPage(http.StatusBadRequest, "Invalid id"))
		return
	}

	d, err := s.resolver.Resolve(r.Context(), c, id)
	if err != nil {
		status := catalogStatus(err)
		s.logger.Warn("detail failed", slog.String("collection", c.Slug), slog.Int("id", id), slog.String("error", err.Error()))
		msg := "An error occurred while fetching details. Please try again later."
		if status == http.StatusNotFound {
			msg = err.Error()
		}
		s.page(w, r, status, c.Label, c.Slug, pages.ErrorPage(status, msg))
		return
	}
	s.page(w, r, http.StatusOK, d.Parent.Name, c.Slug, pages.DetailPage(d))
}

// catalogStatus maps a catalog error to the status the caller sees.
func catalogStatus(err error) int {
	switch {
	case catalog.IsNotFound(err), errors.Is(err, catalog.ErrUnknownCollection):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// Package session keeps the per-browser view state: one live loader per
// collection plus the shared UI preferences.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/meur/dattebayo/internal/catalog"
	"github.com/meur/dattebayo/internal/loader"
	"github.com/meur/dattebayo/internal/models"
)

// EntityLoader is the loader type every list view uses.
type EntityLoader = loader.Loader[models.Entity]

// Factory builds a fresh loader for a collection.
type Factory func(c models.Collection) *EntityLoader

// PageFetcher is the part of the catalog client list views need.
type PageFetcher interface {
	FetchPage(ctx context.Context, collection string, page, limit int) (catalog.Page, error)
}

// NewFactory wires loaders to the catalog. onResult may be nil.
func NewFactory(f PageFetcher, logger *slog.Logger, onResult func(collection string, r loader.Result)) Factory {
	return func(c models.Collection) *EntityLoader {
		fetch := func(ctx context.Context, page int) (loader.Page[models.Entity], error) {
			p, err := f.FetchPage(ctx, c.Slug, page, c.Limit)
			if err != nil {
				return loader.Page[models.Entity]{}, err
			}
			return loader.Page[models.Entity]{Items: p.Items, Total: p.Total}, nil
		}
		opts := loader.Options[models.Entity]{
			Trigger:        loader.ParseTrigger(c.Trigger),
			Admit:          c.Admit,
			FailureMessage: fmt.Sprintf("An error occurred while fetching %s. Please try again later.", strings.ToLower(c.Label)),
			Logger:         logger.With(slog.String("collection", c.Slug)),
		}
		if onResult != nil {
			slug := c.Slug
			opts.OnResult = func(r loader.Result) { onResult(slug, r) }
		}
		return loader.New(fetch, opts)
	}
}

// Session is the state of one browser session.
type Session struct {
	ID string

	mu          sync.Mutex
	factory     Factory
	views       map[string]*EntityLoader
	prefs       models.Preferences
	prefsLoaded bool
	lastSeen    time.Time
}

func newSession(id string, factory Factory, now time.Time) *Session {
	return &Session{
		ID:       id,
		factory:  factory,
		views:    make(map[string]*EntityLoader),
		lastSeen: now,
	}
}

// View returns the live loader for c, creating one when the session has none.
func (s *Session) View(c models.Collection) *EntityLoader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.views[c.Slug]; ok {
		return l
	}
	l := s.factory(c)
	s.views[c.Slug] = l
	return l
}

// Reset tears down the current view of c and starts a new one. Late
// responses for the old view are discarded by its loader.
func (s *Session) Reset(c models.Collection) *EntityLoader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.views[c.Slug]; ok {
		old.Close()
	}
	l := s.factory(c)
	s.views[c.Slug] = l
	return l
}

// Preferences returns the cached preferences and whether they were loaded.
func (s *Session) Preferences() (models.Preferences, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs, s.prefsLoaded
}

// SetPreferences caches p as the session's current preferences.
func (s *Session) SetPreferences(p models.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
	s.prefsLoaded = true
}

// Close tears down every view.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for slug, l := range s.views {
		l.Close()
		delete(s.views, slug)
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager maps session ids to sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	now      func() time.Time
}

// NewManager creates an empty manager.
func NewManager(factory Factory) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s, ok := m.sessions[id]
	if !ok {
		s = newSession(id, m.factory, now)
		m.sessions[id] = s
		return s
	}
	s.touch(now)
	return s
}

// Sweep closes and forgets sessions idle for longer than maxIdle.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			s.Close()
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close tears down every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, maxIdle time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				logger.Info("swept idle sessions", slog.Int("count", n))
			}
		}
	}
}

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/session"
)

// SessionCookie names the cookie carrying the browser session id.
const SessionCookie = "dattebayo_session"

type sessionKey struct{}

// withSession attaches the caller's session, issuing a cookie on first visit.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		sess := s.sessions.Get(id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	return ctx.Value(sessionKey{}).(*session.Session)
}

// preferences returns the session's preferences, reading them from the
// store on first use. A store failure falls back to the defaults.
func (s *Server) preferences(ctx context.Context, sess *session.Session) models.Preferences {
	if p, ok := sess.Preferences(); ok {
		return p
	}
	p, err := s.store.LoadPreferences(ctx, sess.ID)
	if err != nil {
		s.logger.Warn("load preferences failed", slog.String("session", sess.ID), slog.String("error", err.Error()))
		p = models.DefaultPreferences()
	}
	sess.SetPreferences(p)
	return p
}

// updatePreferences applies u, caches the result and writes it through.
func (s *Server) updatePreferences(ctx context.Context, sess *session.Session, u models.PreferencesUpdate) (models.Preferences, error) {
	p := s.preferences(ctx, sess).Apply(u)
	sess.SetPreferences(p)
	if err := s.store.SavePreferences(ctx, sess.ID, p); err != nil {
		return p, err
	}
	return p, nil
}

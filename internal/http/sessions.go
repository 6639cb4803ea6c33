package http

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"moneybook/internal/auth"
	"moneybook/internal/chart"
	"moneybook/internal/session"
)

const (
	sessionCookie = "moneybook_session"
	themeCookie   = "moneybook_theme"
)

// Session is one browser's view of the ledger. Monthly and Yearly mirror the
// chart surfaces the dispatcher draws on.
type Session struct {
	ID         string
	Dispatcher *session.Dispatcher
	Monthly    *chart.Canvas
	Yearly     *chart.Canvas

	mu       sync.Mutex
	identity *auth.Identity
	notice   session.Message
	email    string
}

// Identity returns the signed in identity, if any.
func (s *Session) Identity() (auth.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return auth.Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) setIdentity(id *auth.Identity) {
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
}

// setNotice stores the auth card message and the email to prefill.
func (s *Session) setNotice(m session.Message, email string) {
	s.mu.Lock()
	s.notice = m
	s.email = email
	s.mu.Unlock()
}

func (s *Session) authCard() (session.Message, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice, s.email
}

// canvas returns the surface named slot.
func (s *Session) canvas(slot string) (*chart.Canvas, bool) {
	switch slot {
	case "monthly":
		return s.Monthly, true
	case "yearly":
		return s.Yearly, true
	default:
		return nil, false
	}
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Server) newSession(theme chart.Theme) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	monthly, yearly := chart.NewCanvas(), chart.NewCanvas()
	d := session.New(s.feed, s.records, session.Options{
		Renderer: s.renderer,
		Charts:   chart.NewAdapter(monthly, yearly, theme),
		Logger:   s.logger,
		Now:      s.now,
	})
	sess := &Session{ID: id, Dispatcher: d, Monthly: monthly, Yearly: yearly}
	s.sessions.Set(id, sess)
	return sess, nil
}

// lookupSession returns the session named by the request cookie.
func (s *Server) lookupSession(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// ensureSession returns the request's session, starting one when missing.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if sess, ok := s.lookupSession(r); ok {
		return sess, nil
	}
	sess, err := s.newSession(requestTheme(r))
	if err != nil {
		return nil, err
	}
	s.setSessionCookie(w, r, sess.ID)
	return sess, nil
}

// rotateSession replaces old with a fresh session keeping its theme. The old
// session is evicted, which closes its dispatcher.
func (s *Server) rotateSession(w http.ResponseWriter, r *http.Request, old *Session) (*Session, error) {
	theme := requestTheme(r)
	if old != nil {
		theme = old.Dispatcher.Snapshot().Theme
	}
	sess, err := s.newSession(theme)
	if err != nil {
		return nil, err
	}
	if old != nil {
		s.sessions.Delete(old.ID)
	}
	s.setSessionCookie(w, r, sess.ID)
	return sess, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func setThemeCookie(w http.ResponseWriter, r *http.Request, theme chart.Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func requestTheme(r *http.Request) chart.Theme {
	if c, err := r.Cookie(themeCookie); err == nil {
		return chart.ParseTheme(c.Value)
	}
	return chart.ThemeDark
}

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"moneybook/internal/chart"
	"moneybook/internal/core"
	"moneybook/internal/log"
	"moneybook/internal/session"
	"moneybook/internal/view"
)

type option struct {
	Value    int
	Label    string
	Selected bool
}

type ledgerData struct {
	session.State
	KindLabels view.Labels
}

type pageData struct {
	Theme      chart.Theme
	SignedIn   bool
	Email      string
	Notice     session.Message
	Years      []option
	Months     []option
	KindLabels view.Labels
	Ledger     ledgerData
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *Session)

// requireSignedIn resolves the caller's session and rejects anonymous calls.
func (s *Server) requireSignedIn(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(r)
		if ok {
			if _, signedIn := sess.Identity(); signedIn {
				next(w, r, sess)
				return
			}
		}
		if !isHTMX(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		UnauthorizedError(session.DefaultMessages.SignedOut).Write(w)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ensureSession(w, r)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to start session", log.FieldError, err)
		InternalServerError("session unavailable").Write(w)
		return
	}
	s.render(w, r, "index.html", s.pageData(sess, true), NewHTMXResponse())
}

func (s *Server) pageData(sess *Session, consumeNotice bool) pageData {
	state := sess.Dispatcher.Snapshot()
	notice, email := sess.authCard()
	if consumeNotice {
		sess.setNotice(session.Message{}, email)
	}
	data := pageData{
		Theme:      state.Theme,
		Email:      email,
		Notice:     notice,
		KindLabels: s.renderer.Labels,
		Ledger:     ledgerData{State: state, KindLabels: s.renderer.Labels},
	}
	if id, ok := sess.Identity(); ok {
		data.SignedIn = true
		data.Email = id.Email
		data.Years, data.Months = s.periodOptions(state.Period)
	}
	return data
}

// periodOptions lists current-2 .. current+1 and the twelve months, marking
// the selected period. A selected year outside the window is kept selectable.
func (s *Server) periodOptions(selected core.Period) ([]option, []option) {
	current := s.now().In(s.renderer.Location).Year()
	var years []option
	inRange := false
	for y := current - 2; y <= current+1; y++ {
		sel := y == selected.Year
		inRange = inRange || sel
		years = append(years, option{Value: y, Label: yearLabel(y), Selected: sel})
	}
	if !inRange && selected.Year > 0 {
		years = append(years, option{Value: selected.Year, Label: yearLabel(selected.Year), Selected: true})
	}
	months := make([]option, 12)
	for i := range months {
		months[i] = option{Value: i + 1, Label: chart.DefaultLabels.Months[i], Selected: i+1 == selected.Month}
	}
	return years, months
}

// yearLabel shows the Buddhist era year used across the ledger.
func yearLabel(y int) string {
	return strconv.Itoa(y+543) + " (" + strconv.Itoa(y) + ")"
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request, sess *Session) {
	s.renderLedger(w, r, sess, NewHTMXResponse())
}

func (s *Server) renderLedger(w http.ResponseWriter, r *http.Request, sess *Session, b *HTMXResponseBuilder) {
	data := ledgerData{State: sess.Dispatcher.Snapshot(), KindLabels: s.renderer.Labels}
	s.render(w, r, "ledger", data, b)
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request, sess *Session) {
	if bad := ParseFormOrFail(r); bad != nil {
		bad.Write(w)
		return
	}
	p, err := ParsePeriodForm(r.PostForm, s.now().In(s.renderer.Location))
	if err != nil {
		// An unparsable period is reported by the session like an out of range one.
		p = core.Period{}
	}
	sess.Dispatcher.Dispatch(r.Context(), session.PeriodChanged{Period: p})
	s.renderLedger(w, r, sess, NewHTMXResponse().TriggerChartsRefresh())
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ensureSession(w, r)
	if err != nil {
		InternalServerError("session unavailable").Write(w)
		return
	}
	theme := sess.Dispatcher.Snapshot().Theme.Toggle()
	sess.Dispatcher.Dispatch(r.Context(), session.ThemeChanged{Theme: theme})
	setThemeCookie(w, r, theme)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	NewHTMXResponse().
		TriggerThemeChanged(string(theme)).
		TriggerChartsRefresh().
		Write(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	slot := r.PathValue("slot")
	if slot != "monthly" && slot != "yearly" {
		NotFoundError("unknown chart").Write(w)
		return
	}
	var snap chart.Snapshot
	if sess, ok := s.lookupSession(r); ok {
		canvas, _ := sess.canvas(slot)
		snap = canvas.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to encode chart", log.FieldError, err)
	}
}

// render executes a template into a buffer so a failure can still become a
// clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		InternalServerError("render failed").Write(w)
		return
	}
	b.BodyHTML(buf.Bytes()).Write(w)
}

package http

import (
	"net/http"

	"moneybook/internal/core"
	"moneybook/internal/session"
)

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request, sess *Session) {
	if bad := ParseFormOrFail(r); bad != nil {
		bad.Write(w)
		return
	}
	out := sess.Dispatcher.Dispatch(r.Context(), session.CreateRequested{
		Kind:       core.Kind(FormValue(r, "kind")),
		AmountText: FormValue(r, "amount"),
		Note:       FormValue(r, "note"),
	})

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().TriggerChartsRefresh()
	if out.ClearInput {
		b.TriggerFormReset()
	}
	s.renderLedger(w, r, sess, b)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request, sess *Session) {
	sess.Dispatcher.Dispatch(r.Context(), session.DeleteRequested{ID: r.PathValue("id")})

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderLedger(w, r, sess, NewHTMXResponse().TriggerChartsRefresh())
}

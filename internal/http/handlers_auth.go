package http

import (
	"context"
	"net/http"

	"moneybook/internal/auth"
	"moneybook/internal/log"
	"moneybook/internal/session"
)

type authFunc func(ctx context.Context, email, password string) (auth.Identity, error)

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, log.OpSignIn, s.auth.SignIn, s.messages.SignedIn, s.messages.SignInFailed)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	s.authenticate(w, r, log.OpSignUp, s.auth.SignUp, s.messages.SignedUp, s.messages.SignUpFailed)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, op string, fn authFunc, okText, failPrefix string) {
	if bad := ParseFormOrFail(r); bad != nil {
		bad.Write(w)
		return
	}
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentAuth)

	sess, err := s.ensureSession(w, r)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start session", log.FieldError, err)
		InternalServerError("session unavailable").Write(w)
		return
	}

	email := FormValue(r, "email")
	id, err := fn(ctx, email, r.PostFormValue("password"))
	if err != nil {
		logger.WarnContext(ctx, "Authentication failed",
			log.FieldOperation, op,
			log.FieldError, err)
		sess.setNotice(session.Message{Text: failPrefix + err.Error(), Level: session.LevelError}, email)
		s.respondAuthCard(w, r, sess)
		return
	}

	// A fresh session id on every sign in.
	next, err := s.rotateSession(w, r, sess)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to rotate session", log.FieldError, err)
		InternalServerError("session unavailable").Write(w)
		return
	}
	next.setIdentity(&id)
	next.setNotice(session.Message{Text: okText, Level: session.LevelOK}, id.Email)
	next.Dispatcher.Dispatch(ctx, session.OwnerChanged{Owner: id.OwnerID})

	logger.InfoContext(ctx, "User authenticated",
		log.FieldOperation, op,
		log.FieldOwner, id.OwnerID)
	redirectHome(w, r)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r)
	if ok {
		sess.Dispatcher.Dispatch(r.Context(), session.OwnerChanged{Owner: ""})
		sess.setIdentity(nil)
	}
	next, err := s.rotateSession(w, r, sess)
	if err != nil {
		InternalServerError("session unavailable").Write(w)
		return
	}
	next.setNotice(session.Message{Text: s.messages.SignedOut, Level: session.LevelInfo}, "")
	redirectHome(w, r)
}

// respondAuthCard re-renders the sign in card for htmx, or reloads the page.
func (s *Server) respondAuthCard(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, "auth", s.pageData(sess, true), NewHTMXResponse())
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"moneybook/internal/auth"
	"moneybook/internal/cache"
	"moneybook/internal/log"
	"moneybook/internal/middleware/ratelimit"
	"moneybook/internal/middleware/security"
	"moneybook/internal/middleware/trace"
	"moneybook/internal/session"
	"moneybook/internal/view"
	appweb "moneybook/web"
)

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Auth    auth.Authenticator
	Records session.RecordWriter
	Feed    session.Subscriber
	// Ready reports backend readiness for /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

// Options tune the server; zero values pick defaults.
type Options struct {
	SessionTTL        time.Duration
	MaxSessions       int
	Location          *time.Location
	Logger            *log.Logger
	RequestsPerMinute int
	Now               func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	auth      auth.Authenticator
	records   session.RecordWriter
	feed      session.Subscriber
	ready     func(ctx context.Context) error
	renderer  *view.Renderer
	messages  AuthMessages
	logger    *log.Logger
	now       func() time.Time
	started   time.Time

	sessions   *cache.LRUCache[*Session]
	sessionTTL time.Duration
	cacheMgr   *cache.Manager
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	tracer     *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) (*Server, error) {
	if deps.Auth == nil || deps.Records == nil {
		return nil, errors.New("auth and record writer are required")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	s := &Server{
		templates:  t,
		auth:       deps.Auth,
		records:    deps.Records,
		feed:       deps.Feed,
		ready:      deps.Ready,
		renderer:   view.NewRenderer(opts.Location),
		messages:   DefaultAuthMessages,
		logger:     logger,
		now:        opts.Now,
		started:    opts.Now(),
		sessionTTL: opts.SessionTTL,
		cacheMgr:   cache.NewManager(opts.Logger),
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector:   security.NewDetector(opts.Logger),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)
	s.sessions = cache.NewLRUCache[*Session](opts.MaxSessions, opts.SessionTTL).
		OnEvict(func(_ string, sess *Session) {
			sess.Dispatcher.Close()
		})
	s.cacheMgr.Register(s.sessions)
	s.cacheMgr.StartCleanup(time.Minute)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(static),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(static fs.FS) http.Handler {
	mux := http.NewServeMux()
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)
	post := func(h http.HandlerFunc) http.Handler {
		return limited(security.NoStore(h))
	}

	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("GET /{$}", security.NoStore(http.HandlerFunc(s.handleIndex)))
	mux.Handle("POST /auth/signin", post(s.handleSignIn))
	mux.Handle("POST /auth/signup", post(s.handleSignUp))
	mux.Handle("POST /auth/signout", post(s.handleSignOut))

	mux.Handle("POST /ui/period", post(s.requireSignedIn(s.handlePeriod)))
	mux.Handle("GET /ui/ledger", security.NoStore(s.requireSignedIn(s.handleLedger)))
	mux.Handle("POST /ui/theme", post(s.handleTheme))
	mux.Handle("POST /records", post(s.requireSignedIn(s.handleCreateRecord)))
	mux.Handle("POST /records/{id}/delete", post(s.requireSignedIn(s.handleDeleteRecord)))
	mux.Handle("GET /api/charts/{slot}", security.NoStore(http.HandlerFunc(s.handleChart)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = headers.Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.Size()
}

// Shutdown stops background loops, closes every session and then shuts the
// listener down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
		s.cacheMgr.Stop()
		s.limiter.Stop()
		s.sessions.Purge()
	})
	return err
}

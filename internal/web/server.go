// Package web hosts tables in the browser. Every viewer gets a session with
// its own view.Table; the page is server-rendered and htmx posts each user
// action back to the session, which answers with the re-rendered fragment.
// The same actions are exposed as a JSON API under /api.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tablesorter/internal/config"
	"github.com/JonMunkholm/tablesorter/internal/view"
	"github.com/JonMunkholm/tablesorter/internal/web/middleware"
)

// Reloader re-reads the configured data source.
type Reloader func(ctx context.Context) (view.Options, error)

// RecordGenerator produces a record for the add-row control. id is the
// next 1-based row number.
type RecordGenerator func(id int) view.Record

// Server is the HTTP host for table sessions.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
	sessions *SessionStore

	mu   sync.RWMutex
	base view.Options // options every new session starts from

	reload    Reloader
	newRecord RecordGenerator
	title     string

	limiters []*rateLimiter
	stop     context.CancelFunc
	timed    []func(http.Handler) http.Handler

	router *chi.Mux
	server *http.Server
}

// ServerOption configures optional Server behaviour.
type ServerOption func(*Server)

// WithReloader enables POST /api/reload.
func WithReloader(fn Reloader) ServerOption {
	return func(s *Server) { s.reload = fn }
}

// WithRecordGenerator enables adding rows without a request body.
func WithRecordGenerator(fn RecordGenerator) ServerOption {
	return func(s *Server) { s.newRecord = fn }
}

// WithTitle sets the page heading.
func WithTitle(title string) ServerOption {
	return func(s *Server) { s.title = title }
}

// WithClock replaces time.Now for sessions, throttling and rate limits.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the logger handed to tables. Request logs always go
// through the request-scoped logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a server whose sessions start from opts.
func NewServer(cfg *config.Config, opts view.Options, options ...ServerOption) *Server {
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
		base:   opts,
		title:  "Table",
		router: chi.NewRouter(),
	}
	for _, o := range options {
		o(s)
	}

	s.sessions = NewSessionStore(s.newTable, cfg.Session.TTL, cfg.Session.MaxSessions, s.now)

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel

	s.setupMiddleware()
	s.setupRoutes()

	for _, rl := range s.limiters {
		go rl.cleanup(ctx)
	}
	return s
}

// newTable is the session store's TableFactory.
func (s *Server) newTable(r view.Renderer, onChange func(view.ChangeEvent)) (*view.Table, error) {
	return view.New(s.Options(), r,
		view.WithLogger(s.logger),
		view.WithThrottle(s.cfg.Table.ThrottleDelay, s.now),
		view.OnChange(onChange),
	)
}

// Options returns the options new sessions start from.
func (s *Server) Options() view.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

func (s *Server) setOptions(opts view.Options) {
	s.mu.Lock()
	s.base = opts
	s.mu.Unlock()
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	// Applied per route group so event streams can opt out
	s.timed = []func(http.Handler) http.Handler{
		chimw.Compress(5),
		chimw.Timeout(s.cfg.Server.RequestTimeout),
	}

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute, s.now)
		s.limiters = append(s.limiters, limiter)
		s.router.Use(limiter.middleware(s.rateLimited))
	}
}

// mutationLimit returns the stricter limiter for data-changing routes.
func (s *Server) mutationLimit() func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newRateLimiter(s.cfg.Rate.MutationLimit, time.Minute, s.now)
	s.limiters = append(s.limiters, limiter)
	return limiter.middleware(s.rateLimited)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, ErrRateLimited)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	mutations := s.mutationLimit()

	s.router.Get("/healthz", s.handleHealth)
	s.router.With(s.timed...).Get("/", s.handleIndex)

	// Pages and htmx actions
	s.router.Route("/t/{id}", func(r chi.Router) {
		// Event streams stay open, so they skip compression and the request timeout.
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(s.timed...)
			r.Get("/", s.handleTablePage)
			s.actionRoutes(r, mutations)
		})
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.With(s.timed...).Post("/sessions", s.handleCreateSession)
		r.With(s.timed...).With(mutations).Post("/reload", s.handleReload)

		r.Route("/t/{id}", func(r chi.Router) {
			r.Get("/events", s.handleEvents)

			r.Group(func(r chi.Router) {
				r.Use(s.timed...)
				r.Get("/", s.handleState)
				r.Delete("/", s.handleDeleteSession)
				s.actionRoutes(r, mutations)
			})
		})
	})
}

// actionRoutes mounts the table operations shared by the htmx UI and the
// JSON API. Handlers pick the response format from the request.
func (s *Server) actionRoutes(r chi.Router, mutations func(http.Handler) http.Handler) {
	r.Get("/rows", s.handleRows)
	r.Get("/rows/{index}", s.handleRow)
	r.Post("/search", s.handleSearch)
	r.Post("/filter", s.handleFilter)
	r.Post("/sort", s.handleSort)
	r.Post("/page", s.handlePage)
	r.Post("/page-size", s.handlePageSize)
	r.Post("/clear", s.handleClear)
	r.Post("/refresh", s.handleRefresh)
	r.Post("/flush", s.handleFlush)
	r.Post("/options", s.handleOptions)
	r.With(mutations).Post("/rows", s.handleInsert)
	r.With(mutations).Delete("/rows/{index}", s.handleRemove)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// securityHeaders adds security headers to all responses.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if csp {
				// htmx is loaded from unpkg; styles are inline
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/doorbell-dev/doorbell/pkg/service/roster"
	"github.com/doorbell-dev/doorbell/pkg/usecase"
	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

// Server is the public JSON and websocket surface of the gateway
type Server struct {
	router *chi.Mux

	inviteUC  *usecase.InviteUseCase
	sync      *roster.Sync
	hub       *roster.Broadcaster
	workspace string
	siteKey   string
	cocURL    string
}

// Options configures the server
type Options func(*Server)

// WithCaptchaSiteKey exposes the captcha site key to clients via /api/data
func WithCaptchaSiteKey(key string) Options {
	return func(s *Server) {
		s.siteKey = key
	}
}

// WithCoCURL exposes the code of conduct URL to clients via /api/data
func WithCoCURL(u string) Options {
	return func(s *Server) {
		s.cocURL = u
	}
}

// New creates the HTTP server for the given workspace
func New(inviteUC *usecase.InviteUseCase, sync *roster.Sync, hub *roster.Broadcaster, workspace string, opts ...Options) (*Server, error) {
	if workspace == "" {
		return nil, goerr.New("workspace name is required")
	}

	s := &Server{
		router:    chi.NewRouter(),
		inviteUC:  inviteUC,
		sync:      sync,
		hub:       hub,
		workspace: workspace,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(readinessGate(sync))
		r.Get("/data", s.dataHandler)
		r.Post("/invite", s.inviteHandler)
		r.Get("/live", s.liveHandler)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// readinessGate rejects requests until the first poll cycle has
// succeeded, so clients never observe an empty roster as real data
func readinessGate(sync *roster.Sync) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sync.Ready() {
				http.Error(w, "roster is not ready yet", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

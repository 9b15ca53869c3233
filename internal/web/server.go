// Package web is the JSON HTTP API of CareerVani.
//
// Routes are mounted on a chi router. Everything except signup, login,
// logout and the health and metrics endpoints requires a session token, read
// from the Authorization header or the session cookie by [auth.Service.Middleware].
// Failures are reported as {"error": "..."} with a message fit for end users;
// the underlying error is only logged.
package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/careervani/careervani/internal/auth"
	"github.com/careervani/careervani/internal/followup"
	"github.com/careervani/careervani/internal/grammar"
	"github.com/careervani/careervani/internal/health"
	"github.com/careervani/careervani/internal/interview"
	"github.com/careervani/careervani/internal/observe"
	"github.com/careervani/careervani/internal/report"
	"github.com/careervani/careervani/internal/scoring"
	"github.com/careervani/careervani/internal/translate"
	"github.com/careervani/careervani/pkg/provider/stt"
	"github.com/careervani/careervani/pkg/store"
)

const defaultMaxUploadBytes = 32 << 20

// Deps are the services the handlers call. Translator and Mailer are
// optional; every other field is required.
type Deps struct {
	Auth       *auth.Service
	Feedback   store.FeedbackStore
	Reviewer   *grammar.Reviewer
	Scorer     *scoring.Scorer
	Ranker     *followup.Ranker
	Interviews *interview.Manager
	STT        stt.Provider

	// Translator enables /regional/translate and non-English audio reports.
	Translator *translate.Service

	// Mailer, when set, emails every audio report to the signed-in user.
	Mailer *report.Mailer

	Metrics *observe.Metrics
	Health  *health.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithCORSOrigins allows browser calls from the given origins.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// WithMaxUploadBytes caps audio and video uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// Server holds the handler dependencies.
type Server struct {
	deps           Deps
	corsOrigins    []string
	secureCookies  bool
	maxUpload      int64
	metricsHandler http.Handler
}

// New validates deps and returns a Server.
func New(deps Deps, opts ...Option) (*Server, error) {
	var errs []error
	required := []struct {
		name string
		nil  bool
	}{
		{"Auth", deps.Auth == nil},
		{"Feedback", deps.Feedback == nil},
		{"Reviewer", deps.Reviewer == nil},
		{"Scorer", deps.Scorer == nil},
		{"Ranker", deps.Ranker == nil},
		{"Interviews", deps.Interviews == nil},
		{"STT", deps.STT == nil},
		{"Metrics", deps.Metrics == nil},
		{"Health", deps.Health == nil},
	}
	for _, r := range required {
		if r.nil {
			errs = append(errs, errors.New("web: "+r.name+" must not be nil"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	s := &Server{deps: deps, maxUpload: defaultMaxUploadBytes}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observe.Middleware(s.deps.Metrics))
	// An empty origin list means cors would allow every origin.
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition", observe.CorrelationHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.deps.Health.Register(r)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.deps.Auth.Middleware)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/download/{id}", s.handleDownload)

		r.Route("/spoken", func(r chi.Router) {
			r.Post("/result", s.handleSpokenResult)
			r.Post("/report", s.handleSpokenReport)
		})
		r.Post("/regional/translate", s.handleRegionalTranslate)

		r.Route("/interview", func(r chi.Router) {
			r.Post("/mock/start", s.handleMockStart)
			r.Post("/mock/answer", s.handleMockAnswer)
			r.Post("/video/response", s.handleVideoResponse)
			r.Get("/video/log", s.handleVideoLog)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})
	return r
}

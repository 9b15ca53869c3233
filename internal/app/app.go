// Package app wires all CareerVani subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP and runs the background loops, and Shutdown
// tears everything down in order.
//
// For testing, inject fakes via functional options (WithStore, WithLexicon,
// etc.). When an option is not provided, New creates real implementations
// from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/careervani/careervani/internal/auth"
	"github.com/careervani/careervani/internal/config"
	"github.com/careervani/careervani/internal/feedback"
	"github.com/careervani/careervani/internal/followup"
	"github.com/careervani/careervani/internal/grammar"
	"github.com/careervani/careervani/internal/health"
	"github.com/careervani/careervani/internal/interview"
	"github.com/careervani/careervani/internal/observe"
	"github.com/careervani/careervani/internal/report"
	"github.com/careervani/careervani/internal/scoring"
	"github.com/careervani/careervani/internal/scoring/phonetic"
	"github.com/careervani/careervani/internal/translate"
	"github.com/careervani/careervani/internal/web"
	"github.com/careervani/careervani/pkg/pronounce"
	"github.com/careervani/careervani/pkg/store"
	"github.com/careervani/careervani/pkg/store/memstore"
	"github.com/careervani/careervani/pkg/store/postgres"
)

const readHeaderTimeout = 10 * time.Second

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	// Injected or built in New.
	store          store.Store
	lexicon        *pronounce.Dictionary
	metrics        *observe.Metrics
	metricsHandler http.Handler
	logLevel       *slog.LevelVar
	configPath     string

	interviews *interview.Manager
	handler    http.Handler
	server     *http.Server

	// listening is closed once the HTTP listener is bound; addr is valid
	// after that.
	listening chan struct{}
	addr      net.Addr

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a store instead of connecting to PostgreSQL or falling
// back to memory.
func WithStore(s store.Store) Option {
	return func(a *App) { a.store = s }
}

// WithLexicon injects a pronouncing dictionary instead of loading
// pronunciation.dictionary_path.
func WithLexicon(d *pronounce.Dictionary) Option {
	return func(a *App) { a.lexicon = d }
}

// WithMetrics injects the metric instruments. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *App) { a.metricsHandler = h }
}

// WithLogLevel lets config reloads adjust the level of the default logger.
func WithLogLevel(lv *slog.LevelVar) Option {
	return func(a *App) { a.logLevel = lv }
}

// WithConfigWatch reloads path while running and applies hot-reloadable
// changes.
func WithConfigWatch(path string) Option {
	return func(a *App) { a.configPath = path }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. The providers come
// from [BuildProviders].
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.STT == nil || providers.Grammar == nil {
		return nil, errors.New("app: stt and grammar providers are required")
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
		listening: make(chan struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	var checks []health.Checker

	// ── 1. Store ─────────────────────────────────────────────────────────
	check, err := a.initStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: init store: %w", err)
	}
	if check != nil {
		checks = append(checks, *check)
	}
	var feedbackStore store.FeedbackStore = a.store
	if path := cfg.Feedback.ArchivePath; path != "" {
		feedbackStore = feedback.NewArchive(a.store, path)
		slog.Info("archiving feedback", "path", path)
	}

	// ── 2. Scoring ───────────────────────────────────────────────────────
	if a.lexicon == nil {
		d, err := pronounce.LoadFile(cfg.Pronunciation.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("app: load dictionary: %w", err)
		}
		a.lexicon = d
		slog.Info("loaded pronouncing dictionary", "path", cfg.Pronunciation.DictionaryPath, "words", d.Len())
	}
	var scoreOpts []scoring.Option
	if cfg.Pronunciation.Hints {
		scoreOpts = append(scoreOpts, scoring.WithSuggester(phonetic.New(a.lexicon.Words())))
	}
	scorer := scoring.New(a.lexicon, scoreOpts...)

	reviewer, err := grammar.NewReviewer(a.providers.Grammar, nil)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	// ── 3. Interviews ────────────────────────────────────────────────────
	ranker := followup.NewRanker()
	a.interviews, err = interview.NewManager(ranker, a.providers.STT, interview.WithTTL(cfg.Interview.SessionTTL))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if err := a.metrics.ObserveActiveInterviews(a.interviews.Active); err != nil {
		slog.Warn("active interview gauge not registered", "err", err)
	}

	// ── 4. Optional services ─────────────────────────────────────────────
	var translator *translate.Service
	if a.providers.LLM != nil {
		translator, err = translate.New(a.providers.LLM)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	} else {
		slog.Warn("no llm configured: regional translation disabled")
	}

	var mailer *report.Mailer
	if cfg.SMTP.Enabled() {
		mailer, err = report.NewMailer(report.MailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			StartTLS: string(cfg.SMTP.StartTLS),
		})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	authSvc, err := auth.New(a.store, cfg.Auth.JWTSecret, auth.WithTokenTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	// ── 5. HTTP ──────────────────────────────────────────────────────────
	for _, kind := range []string{"llm", "stt", "grammar"} {
		if healthy, ok := a.providers.backends[kind]; ok {
			c := health.BackendCheck(kind, healthy)
			// Only translation depends on the LLM group directly.
			c.Optional = kind == "llm"
			checks = append(checks, c)
		}
	}

	webOpts := []web.Option{
		web.WithCORSOrigins(cfg.Server.CORSOrigins...),
		web.WithSecureCookies(cfg.Server.SecureCookies),
		web.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
	}
	if a.metricsHandler != nil {
		webOpts = append(webOpts, web.WithMetricsHandler(a.metricsHandler))
	}
	srv, err := web.New(web.Deps{
		Auth:       authSvc,
		Feedback:   feedbackStore,
		Reviewer:   reviewer,
		Scorer:     scorer,
		Ranker:     ranker,
		Interviews: a.interviews,
		STT:        a.providers.STT,
		Translator: translator,
		Mailer:     mailer,
		Metrics:    a.metrics,
		Health:     health.New(checks...),
	}, webOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.handler = srv.Handler()
	a.server = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return a, nil
}

// initStore connects to PostgreSQL when a DSN is configured and falls back
// to an in-memory store otherwise. It returns the readiness check for the
// database, if any.
func (a *App) initStore(ctx context.Context) (*health.Checker, error) {
	if a.store != nil {
		return nil, nil
	}

	dsn := a.cfg.Database.PostgresDSN
	if dsn == "" {
		slog.Warn("no database configured: accounts and feedback are kept in memory")
		a.store = memstore.New()
		return nil, nil
	}

	pg, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, err
	}
	a.store = pg
	a.closers = append(a.closers, func() error {
		pg.Close()
		return nil
	})
	check := health.PingCheck("postgres", pg)
	return &check, nil
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler { return a.handler }

// Addr blocks until the server is listening and returns its address, or
// returns nil when ctx is done first.
func (a *App) Addr(ctx context.Context) net.Addr {
	select {
	case <-a.listening:
		return a.addr
	case <-ctx.Done():
		return nil
	}
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves HTTP, sweeps expired interview sessions and, when configured,
// watches the config file. It blocks until ctx is cancelled or the server
// fails, then stops the server gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("app: listen: %w", err)
	}
	a.addr = ln.Addr()
	close(a.listening)

	g, gctx := errgroup.WithContext(ctx)

	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.onConfigChange)
		if err != nil {
			slog.Warn("config watch disabled", "path", a.configPath, "err", err)
		} else {
			g.Go(func() error { return w.Run(gctx) })
			g.Go(func() error { return reloadOnHangup(gctx, w) })
		}
	}

	g.Go(func() error {
		slog.Info("http server listening", "addr", ln.Addr().String(), "tls", a.cfg.Server.TLS.Enabled())
		var err error
		if tls := a.cfg.Server.TLS; tls.Enabled() {
			err = a.server.ServeTLS(ln, tls.CertFile, tls.KeyFile)
		} else {
			err = a.server.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", err)
	})

	g.Go(func() error {
		return a.interviews.Run(gctx, a.cfg.Interview.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown", "err", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// reloadOnHangup triggers an immediate config check on SIGHUP.
func reloadOnHangup(ctx context.Context, w *config.Watcher) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			slog.Info("SIGHUP received, reloading config")
			w.Reload()
		}
	}
}

// onConfigChange applies a reloaded config. Only the log level takes effect
// live; every other change is reported.
func (a *App) onConfigChange(old, new *config.Config) {
	d := config.Diff(old, new)
	if d.LogLevelChanged {
		if a.logLevel != nil {
			a.logLevel.Set(d.NewLogLevel.SlogLevel())
		}
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("config changed; restart to apply", "sections", d.RestartRequired)
	}
}

func (a *App) shutdownTimeout() time.Duration {
	if t := a.cfg.Server.ShutdownTimeout; t > 0 {
		return t
	}
	return config.DefaultShutdownTimeout
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown stops the HTTP server and tears down all subsystems in init
// order. It respects the context deadline: if ctx expires before all closers
// finish, remaining closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if err := a.server.Shutdown(ctx); err != nil {
			slog.Warn("http shutdown error", "err", err)
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

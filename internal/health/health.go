// Package health serves the liveness and readiness probes.
//
// /healthz answers 200 as long as the process can serve HTTP. /readyz runs
// every registered [Checker] concurrently and reports one of three states:
//
//   - ready: every check passed (200)
//   - degraded: only optional checks failed (200)
//   - unavailable: a required check failed (503)
package health

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 5 * time.Second

// Readiness states.
const (
	StatusReady       = "ready"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// ErrNoHealthyBackend is reported by [BackendCheck] when every backend of a
// fallback group has an open circuit breaker.
var ErrNoHealthyBackend = errors.New("all backends unavailable")

// Checker probes one dependency. Check returns nil when it is usable.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error

	// Optional failures degrade readiness without failing it. Regional
	// translation, for example, is not needed to score English answers.
	Optional bool
}

// Pinger is implemented by *postgres.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck is a required check that pings p.
func PingCheck(name string, p Pinger) Checker {
	return Checker{Name: name, Check: p.Ping}
}

// BackendCheck is a required check over a resilience fallback group's
// Healthy method.
func BackendCheck(name string, healthy func() bool) Checker {
	return Checker{Name: name, Check: func(context.Context) error {
		if healthy() {
			return nil
		}
		return ErrNoHealthyBackend
	}}
}

// CheckResult is one entry of the /readyz body.
type CheckResult struct {
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Optional bool   `json:"optional,omitempty"`
	Error    string `json:"error,omitempty"`
	TookMS   int64  `json:"took_ms"`
}

// Report is the /readyz body.
type Report struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks"`
}

// Handler serves the probes. The checker list is fixed by [New].
type Handler struct {
	checkers []Checker
	started  time.Time
}

// New returns a Handler evaluating checkers on every readiness probe.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: slices.Clone(checkers), started: time.Now()}
}

// Evaluate runs all checks, each bounded by its own timeout. Results are
// sorted by name.
func (h *Handler) Evaluate(ctx context.Context) Report {
	results := make([]CheckResult, len(h.checkers))

	var g errgroup.Group
	for i, c := range h.checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			start := time.Now()
			err := c.Check(cctx)
			results[i] = CheckResult{
				Name:     c.Name,
				OK:       err == nil,
				Optional: c.Optional,
				TookMS:   time.Since(start).Milliseconds(),
			}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(results, func(a, b CheckResult) int { return cmp.Compare(a.Name, b.Name) })

	rep := Report{Status: StatusReady, Checks: results}
	for _, r := range results {
		switch {
		case r.OK:
		case r.Optional:
			if rep.Status == StatusReady {
				rep.Status = StatusDegraded
			}
		default:
			rep.Status = StatusUnavailable
		}
	}
	return rep
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"uptime_ms": time.Since(h.started).Milliseconds(),
	})
}

// Readyz is the readiness probe.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	rep := h.Evaluate(r.Context())
	code := http.StatusOK
	if rep.Status == StatusUnavailable {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, rep)
}

// Register mounts /healthz and /readyz on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

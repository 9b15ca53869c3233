package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func ok(name string) Checker { return Checker{Name: name, Check: func(context.Context) error { return nil }} }

func failing(name, msg string) Checker {
	return Checker{Name: name, Check: func(context.Context) error { return errors.New(msg) }}
}

func optional(c Checker) Checker {
	c.Optional = true
	return c
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checkers   []Checker
		wantCode   int
		wantStatus string
	}{
		{"no checks", nil, http.StatusOK, StatusReady},
		{"all pass", []Checker{ok("postgres"), ok("stt")}, http.StatusOK, StatusReady},
		{"optional fails", []Checker{ok("stt"), optional(failing("llm", "quota"))}, http.StatusOK, StatusDegraded},
		{"required fails", []Checker{failing("postgres", "connection refused"), ok("stt")}, http.StatusServiceUnavailable, StatusUnavailable},
		{"both fail", []Checker{failing("grammar", "down"), optional(failing("llm", "quota"))}, http.StatusServiceUnavailable, StatusUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			New(tc.checkers...).Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tc.wantCode)
			}
			var rep Report
			if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rep.Status != tc.wantStatus {
				t.Errorf("status = %q, want %q", rep.Status, tc.wantStatus)
			}
			if len(rep.Checks) != len(tc.checkers) {
				t.Errorf("checks = %d, want %d", len(rep.Checks), len(tc.checkers))
			}
		})
	}
}

func TestEvaluate_ResultsSortedWithErrors(t *testing.T) {
	t.Parallel()

	h := New(
		BackendCheck("stt", func() bool { return false }),
		PingCheck("postgres", pinger{err: errors.New("too many clients")}),
		optional(ok("llm")),
	)
	rep := h.Evaluate(context.Background())

	want := []CheckResult{
		{Name: "llm", OK: true, Optional: true},
		{Name: "postgres", Error: "too many clients"},
		{Name: "stt", Error: ErrNoHealthyBackend.Error()},
	}
	if len(rep.Checks) != len(want) {
		t.Fatalf("checks = %+v", rep.Checks)
	}
	for i, w := range want {
		got := rep.Checks[i]
		got.TookMS = 0
		if got != w {
			t.Errorf("checks[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestEvaluate_CancelledContext(t *testing.T) {
	t.Parallel()

	h := New(Checker{Name: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if rep := h.Evaluate(ctx); rep.Status != StatusUnavailable {
		t.Errorf("status = %q, want unavailable", rep.Status)
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	New(ok("postgres")).Register(r)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: code = %d", path, rec.Code)
		}
		if rec.Header().Get("Cache-Control") != "no-store" {
			t.Errorf("%s: probes must not be cached", path)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Status != "alive" {
		t.Errorf("healthz body = %+v (%v)", body, err)
	}
}

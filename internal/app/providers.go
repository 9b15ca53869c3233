package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/careervani/careervani/internal/config"
	"github.com/careervani/careervani/internal/observe"
	"github.com/careervani/careervani/internal/resilience"
	"github.com/careervani/careervani/pkg/provider/grammar"
	"github.com/careervani/careervani/pkg/provider/grammar/llmcheck"
	"github.com/careervani/careervani/pkg/provider/llm"
	"github.com/careervani/careervani/pkg/provider/stt"
)

// Providers holds one interface value per external service. LLM is nil when
// no LLM is configured; STT and Grammar are always set by [BuildProviders].
type Providers struct {
	LLM     llm.Provider
	STT     stt.Provider
	Grammar grammar.Checker

	// backends reports the health of each fallback group, keyed by kind.
	backends map[string]func() bool
}

// BuildProviders instantiates every provider named in cfg through reg. Each
// kind becomes a fallback group (first entry primary, the rest fallbacks)
// wrapped with latency and error metrics. The "llm" grammar backend is
// registered here because it needs the LLM group built first.
func BuildProviders(cfg *config.Config, reg *config.Registry, metrics *observe.Metrics) (*Providers, error) {
	fbCfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			OnStateChange: func(name string, from, to resilience.State) {
				slog.Warn("circuit breaker state change", "backend", name, "from", from.String(), "to", to.String())
				metrics.RecordBreakerTransition(name, to.String())
			},
		},
	}
	ps := &Providers{backends: make(map[string]func() bool)}

	// ── LLM ──────────────────────────────────────────────────────────────
	if entries := cfg.Providers.LLM; len(entries) > 0 {
		var group *resilience.LLMFallback
		for i, e := range entries {
			p, err := reg.CreateLLM(e)
			if err != nil {
				return nil, fmt.Errorf("create llm provider %q: %w", e.Name, err)
			}
			if i == 0 {
				group = resilience.NewLLMFallback(p, "llm/"+e.Name, fbCfg)
			} else {
				group.AddFallback("llm/"+e.Name, p)
			}
			slog.Info("provider created", "kind", "llm", "name", e.Name, "model", e.Model, "fallback", i > 0)
		}
		ps.backends["llm"] = group.Healthy
		ps.LLM = &meteredLLM{Provider: group, metrics: metrics}

		reg.RegisterGrammar("llm", func(config.ProviderEntry) (grammar.Checker, error) {
			return llmcheck.New(ps.LLM)
		})
	}

	// ── STT ──────────────────────────────────────────────────────────────
	var sttGroup *resilience.STTFallback
	for i, e := range cfg.Providers.STT {
		p, err := reg.CreateSTT(e)
		if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", e.Name, err)
		}
		if i == 0 {
			sttGroup = resilience.NewSTTFallback(p, "stt/"+e.Name, fbCfg)
		} else {
			sttGroup.AddFallback("stt/"+e.Name, p)
		}
		slog.Info("provider created", "kind", "stt", "name", e.Name, "model", e.Model, "fallback", i > 0)
	}
	if sttGroup == nil {
		return nil, fmt.Errorf("app: no stt provider configured")
	}
	ps.backends["stt"] = sttGroup.Healthy
	ps.STT = &meteredSTT{Provider: sttGroup, metrics: metrics}

	// ── Grammar ──────────────────────────────────────────────────────────
	var grammarGroup *resilience.GrammarFallback
	for i, e := range cfg.Providers.Grammar {
		c, err := reg.CreateGrammar(e)
		if err != nil {
			return nil, fmt.Errorf("create grammar checker %q: %w", e.Name, err)
		}
		if i == 0 {
			grammarGroup = resilience.NewGrammarFallback(c, "grammar/"+e.Name, fbCfg)
		} else {
			grammarGroup.AddFallback("grammar/"+e.Name, c)
		}
		slog.Info("provider created", "kind", "grammar", "name", e.Name, "fallback", i > 0)
	}
	if grammarGroup == nil {
		return nil, fmt.Errorf("app: no grammar checker configured")
	}
	ps.backends["grammar"] = grammarGroup.Healthy
	ps.Grammar = &meteredChecker{Checker: grammarGroup, metrics: metrics}

	return ps, nil
}

// ─── metered wrappers ───

// The wrappers below sit outside the fallback groups, so one span and one
// duration sample cover the whole failover chain.

type meteredLLM struct {
	llm.Provider
	metrics *observe.Metrics
}

func (p *meteredLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	start := time.Now()
	resp, err := observe.Traced(ctx, "llm.complete", func(ctx context.Context) (*llm.CompletionResponse, error) {
		return p.Provider.Complete(ctx, req)
	}, attribute.Int("messages", len(req.Messages)), attribute.Bool("json", req.Format == llm.FormatJSON))
	p.metrics.RecordProviderCall(ctx, "llm", nil, time.Since(start), err)
	return resp, err
}

type meteredSTT struct {
	stt.Provider
	metrics *observe.Metrics
}

func (p *meteredSTT) Transcribe(ctx context.Context, audio stt.Audio) (*stt.Transcript, error) {
	start := time.Now()
	t, err := observe.Traced(ctx, "stt.transcribe", func(ctx context.Context) (*stt.Transcript, error) {
		return p.Provider.Transcribe(ctx, audio)
	}, attribute.Int("audio.bytes", len(audio.Data)))
	p.metrics.RecordProviderCall(ctx, "stt", p.metrics.STTDuration, time.Since(start), err)
	return t, err
}

type meteredChecker struct {
	grammar.Checker
	metrics *observe.Metrics
}

func (c *meteredChecker) Check(ctx context.Context, text string) ([]grammar.Issue, error) {
	start := time.Now()
	issues, err := observe.Traced(ctx, "grammar.check", func(ctx context.Context) ([]grammar.Issue, error) {
		return c.Checker.Check(ctx, text)
	}, attribute.Int("text.len", len(text)))
	c.metrics.RecordProviderCall(ctx, "grammar", c.metrics.GrammarDuration, time.Since(start), err)
	return issues, err
}

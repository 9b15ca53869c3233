package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/careervani/careervani/pkg/provider/grammar"
	"github.com/careervani/careervani/pkg/provider/llm"
	"github.com/careervani/careervani/pkg/provider/stt"
)

// ErrProviderNotRegistered is returned by the Create methods for a name no
// factory was registered under.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Factory builds a provider from its config entry.
type Factory[T any] func(ProviderEntry) (T, error)

// factorySet is the per-kind half of a Registry.
type factorySet[T any] struct {
	kind   string
	mu     sync.RWMutex
	byName map[string]Factory[T]
}

func newFactorySet[T any](kind string) *factorySet[T] {
	return &factorySet[T]{kind: kind, byName: make(map[string]Factory[T])}
}

func (s *factorySet[T]) add(name string, f Factory[T]) {
	s.mu.Lock()
	s.byName[name] = f
	s.mu.Unlock()
}

func (s *factorySet[T]) build(e ProviderEntry) (T, error) {
	s.mu.RLock()
	f := s.byName[e.Name]
	s.mu.RUnlock()
	if f == nil {
		var zero T
		return zero, fmt.Errorf("%w: %s/%q", ErrProviderNotRegistered, s.kind, e.Name)
	}
	return f(e)
}

func (s *factorySet[T]) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.byName))
}

// Registry resolves [ProviderEntry] names to constructors. The binary
// registers the built-in backends at startup; tests register mocks. It is
// safe for concurrent use, and a later registration replaces an earlier one.
type Registry struct {
	llm     *factorySet[llm.Provider]
	stt     *factorySet[stt.Provider]
	grammar *factorySet[grammar.Checker]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		llm:     newFactorySet[llm.Provider]("llm"),
		stt:     newFactorySet[stt.Provider]("stt"),
		grammar: newFactorySet[grammar.Checker]("grammar"),
	}
}

// Register* add a factory under name; Create* build the entry's provider.

func (r *Registry) RegisterLLM(name string, f Factory[llm.Provider]) { r.llm.add(name, f) }
func (r *Registry) RegisterSTT(name string, f Factory[stt.Provider]) { r.stt.add(name, f) }
func (r *Registry) RegisterGrammar(name string, f Factory[grammar.Checker]) { r.grammar.add(name, f) }

func (r *Registry) CreateLLM(e ProviderEntry) (llm.Provider, error) { return r.llm.build(e) }
func (r *Registry) CreateSTT(e ProviderEntry) (stt.Provider, error) { return r.stt.build(e) }
func (r *Registry) CreateGrammar(e ProviderEntry) (grammar.Checker, error) { return r.grammar.build(e) }

// Registered lists the names registered for kind ("llm", "stt" or
// "grammar") in sorted order. Unknown kinds yield nil.
func (r *Registry) Registered(kind string) []string {
	switch kind {
	case "llm":
		return r.llm.names()
	case "stt":
		return r.stt.names()
	case "grammar":
		return r.grammar.names()
	}
	return nil
}

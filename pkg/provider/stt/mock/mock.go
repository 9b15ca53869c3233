// Package mock provides a test double for stt.Provider.
//
// Example:
//
//	p := &mock.Provider{Transcript: &stt.Transcript{Text: "hello"}}
//	t, _ := p.Transcribe(ctx, stt.Audio{Data: data})
package mock

import (
	"context"
	"sync"

	"github.com/careervani/careervani/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	Ctx   context.Context
	Audio stt.Audio
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned by Transcribe. A nil value yields an empty
	// Transcript.
	Transcript *stt.Transcript

	// TranscribeFunc, if set, overrides Transcript and Err.
	TranscribeFunc func(ctx context.Context, audio stt.Audio) (*stt.Transcript, error)

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Calls records every call to Transcribe.
	Calls []TranscribeCall
}

// Transcribe records the call and returns Transcript, Err.
func (p *Provider) Transcribe(ctx context.Context, audio stt.Audio) (*stt.Transcript, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranscribeCall{Ctx: ctx, Audio: audio})
	fn, tr, err := p.TranscribeFunc, p.Transcript, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, audio)
	}
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return &stt.Transcript{}, nil
	}
	out := *tr
	return &out, nil
}

// CallCount returns the number of Transcribe calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

var _ stt.Provider = (*Provider)(nil)

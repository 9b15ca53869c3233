package resilience

import (
	"context"
	"errors"

	"github.com/careervani/careervani/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] on top of a [FallbackGroup].
// [stt.ErrEmptyAudio] is treated as permanent.
type STTFallback struct {
	group *FallbackGroup[stt.Provider]
}

var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred backend.
func NewSTTFallback(primary stt.Provider, primaryName string, cfg FallbackConfig) *STTFallback {
	return &STTFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional STT provider.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.group.AddFallback(name, provider)
}

// Transcribe sends audio to the first healthy provider.
func (f *STTFallback) Transcribe(ctx context.Context, audio stt.Audio) (*stt.Transcript, error) {
	tr, err := ExecuteWithResult(ctx, f.group, func(p stt.Provider) (*stt.Transcript, error) {
		tr, err := p.Transcribe(ctx, audio)
		if errors.Is(err, stt.ErrEmptyAudio) {
			return nil, Permanent(err)
		}
		return tr, err
	})
	return tr, err
}

// Status reports the breaker state of each backend.
func (f *STTFallback) Status() []BackendStatus { return f.group.Status() }

// Healthy reports whether any backend admits calls.
func (f *STTFallback) Healthy() bool { return f.group.Healthy() }

// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (a local whisper.cpp server,
// the OpenAI audio API, Deepgram) and turns one recorded answer into text.
// CareerVani transcribes complete uploads, so the interface is a single
// request/response call rather than a live stream.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"errors"
)

// ErrEmptyAudio is returned when Transcribe is called without audio data.
var ErrEmptyAudio = errors.New("stt: audio is empty")

// Provider is the abstraction over any STT backend.
type Provider interface {
	// Transcribe converts the recorded audio into text. It returns an error
	// when the backend cannot be reached, rejects the audio, or ctx is
	// cancelled. Silence yields a Transcript with empty Text and a nil error.
	Transcribe(ctx context.Context, audio Audio) (*Transcript, error)
}

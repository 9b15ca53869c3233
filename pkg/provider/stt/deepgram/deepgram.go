// Package deepgram provides a Deepgram-backed STT provider using the Deepgram
// streaming WebSocket API. A recorded answer is pushed through the stream in
// chunks and the final results are joined into one transcript.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/careervani/careervani/pkg/provider/stt"
	"github.com/coder/websocket"
)

const (
	deepgramEndpoint  = "wss://api.deepgram.com/v1/listen"
	defaultModel      = "nova-3"
	defaultLanguage   = "en"
	defaultSampleRate = 16000

	// chunkSize is the number of bytes written per binary frame.
	chunkSize = 8192
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Deepgram Provider.
type Option func(*Provider)

// WithModel sets the Deepgram model to use (e.g., "nova-3", "base").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code for recognition (e.g., "en", "hi").
func WithLanguage(language string) Option {
	return func(p *Provider) {
		p.language = language
	}
}

// WithSampleRate sets the sample rate reported for raw PCM uploads.
func WithSampleRate(rate int) Option {
	return func(p *Provider) {
		p.sampleRate = rate
	}
}

// WithEndpoint overrides the WebSocket endpoint. Used by tests.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// Provider implements stt.Provider backed by the Deepgram streaming API.
type Provider struct {
	apiKey     string
	model      string
	language   string
	sampleRate int
	endpoint   string
}

// New creates a new Deepgram Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		model:      defaultModel,
		language:   defaultLanguage,
		sampleRate: defaultSampleRate,
		endpoint:   deepgramEndpoint,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Transcribe streams audio to Deepgram and waits for the server to close the
// stream. Final results are concatenated in arrival order.
func (p *Provider) Transcribe(ctx context.Context, audio stt.Audio) (*stt.Transcript, error) {
	if len(audio.Data) == 0 {
		return nil, stt.ErrEmptyAudio
	}

	wsURL, err := p.buildURL(audio)
	if err != nil {
		return nil, fmt.Errorf("deepgram: build URL: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.apiKey)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("deepgram: dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 20)

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- writeAudio(ctx, conn, audio.Data)
	}()

	var (
		parts      []string
		confidence float64
		duration   time.Duration
	)
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				break
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("deepgram: %w", ctx.Err())
			}
			if len(parts) > 0 {
				// Server hung up after delivering results.
				break
			}
			return nil, fmt.Errorf("deepgram: read: %w", err)
		}

		r, ok := parseDeepgramResponse(msg)
		if !ok {
			continue
		}
		if r.metadata {
			duration = r.duration
			break
		}
		if !r.isFinal || r.text == "" {
			continue
		}
		parts = append(parts, r.text)
		confidence += r.confidence
	}

	if err := <-writeErr; err != nil && len(parts) == 0 {
		return nil, fmt.Errorf("deepgram: write: %w", err)
	}
	_ = conn.Close(websocket.StatusNormalClosure, "transcription complete")

	t := &stt.Transcript{
		Text:     strings.TrimSpace(strings.Join(parts, " ")),
		Language: p.languageFor(audio),
		Duration: duration,
	}
	if len(parts) > 0 {
		t.Confidence = confidence / float64(len(parts))
	}
	return t, nil
}

// writeAudio sends data in binary frames and then asks Deepgram to flush.
func writeAudio(ctx context.Context, conn *websocket.Conn, data []byte) error {
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		if err := conn.Write(ctx, websocket.MessageBinary, data[start:end]); err != nil {
			return err
		}
	}
	return conn.Write(ctx, websocket.MessageText, []byte(`{"type":"CloseStream"}`))
}

func (p *Provider) languageFor(audio stt.Audio) string {
	if audio.Language != "" {
		return audio.Language
	}
	return p.language
}

// buildURL constructs the Deepgram streaming endpoint URL for the given audio.
// Container formats are detected by Deepgram; raw PCM needs encoding hints.
func (p *Provider) buildURL(audio stt.Audio) (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("model", p.model)
	q.Set("language", p.languageFor(audio))
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")

	if audio.IsPCM() {
		sr := audio.SampleRate
		if sr == 0 {
			sr = p.sampleRate
		}
		q.Set("encoding", "linear16")
		q.Set("sample_rate", strconv.Itoa(sr))
		if audio.Channels > 0 {
			q.Set("channels", strconv.Itoa(audio.Channels))
		}
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ---- responses ----

// deepgramResponse is the JSON structure returned by Deepgram for Results and
// Metadata events.
type deepgramResponse struct {
	Type     string  `json:"type"`
	IsFinal  bool    `json:"is_final"`
	Duration float64 `json:"duration"`
	Channel  struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// result is one parsed stream event.
type result struct {
	text       string
	isFinal    bool
	confidence float64

	// metadata is set for the trailing Metadata event, which carries the
	// total audio duration and marks the end of the stream.
	metadata bool
	duration time.Duration
}

// parseDeepgramResponse parses a raw Deepgram WebSocket message.
// Returns (result, true) on success, or (zero, false) if the message should be ignored.
func parseDeepgramResponse(data []byte) (result, bool) {
	var resp deepgramResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return result{}, false
	}
	switch resp.Type {
	case "Metadata":
		return result{
			metadata: true,
			duration: time.Duration(resp.Duration * float64(time.Second)),
		}, true
	case "Results":
	default:
		return result{}, false
	}
	if len(resp.Channel.Alternatives) == 0 {
		return result{}, false
	}

	alt := resp.Channel.Alternatives[0]
	return result{
		text:       alt.Transcript,
		isFinal:    resp.IsFinal,
		confidence: alt.Confidence,
	}, true
}

package stt

import (
	"path"
	"strings"
	"time"
)

// ContentTypePCM16 marks raw 16-bit signed little-endian PCM without a
// container. Providers that need a file format wrap it in WAV using
// SampleRate and Channels.
const ContentTypePCM16 = "audio/L16"

// Audio is a single recorded answer.
type Audio struct {
	// Data holds the encoded file (webm, wav, mp3, ...) or raw PCM.
	Data []byte

	// Filename is the upload's name. Used as the multipart file name and as a
	// format hint by some backends. Defaults to "audio.wav".
	Filename string

	// ContentType is the MIME type of Data, e.g. "audio/webm".
	ContentType string

	// Language is an optional BCP-47 hint such as "en". Empty lets the
	// provider use its default or auto-detect.
	Language string

	// SampleRate and Channels describe raw PCM when ContentType is
	// ContentTypePCM16. Ignored otherwise.
	SampleRate int
	Channels   int
}

// Name returns Filename, or a default derived from ContentType.
func (a Audio) Name() string {
	if a.Filename != "" {
		return path.Base(a.Filename)
	}
	switch {
	case strings.Contains(a.ContentType, "webm"):
		return "audio.webm"
	case strings.Contains(a.ContentType, "mpeg"), strings.Contains(a.ContentType, "mp3"):
		return "audio.mp3"
	case strings.Contains(a.ContentType, "ogg"):
		return "audio.ogg"
	default:
		return "audio.wav"
	}
}

// IsPCM reports whether Data is raw PCM that needs a container.
func (a Audio) IsPCM() bool {
	return a.ContentType == ContentTypePCM16
}

// Transcript is the text recognised from one Audio.
type Transcript struct {
	// Text is the transcribed speech, trimmed of surrounding whitespace.
	Text string `json:"text"`

	// Language is the detected or requested language, if the provider reports it.
	Language string `json:"language,omitempty"`

	// Confidence is the overall confidence in [0, 1]. Zero if unreported.
	Confidence float64 `json:"confidence,omitempty"`

	// Duration is the audio length, if the provider reports it.
	Duration time.Duration `json:"duration,omitempty"`
}

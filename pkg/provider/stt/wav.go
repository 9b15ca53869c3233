package stt

import (
	"bytes"
	"encoding/binary"
)

// Defaults assumed for PCM16 audio that does not state its format.
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
)

// wavHeader is the canonical 44-byte RIFF header for integer PCM.
type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// File returns the upload form of a: raw PCM16 is wrapped in a WAV
// container, anything else passes through with its own name and type.
func (a Audio) File() (data []byte, name, contentType string) {
	if !a.IsPCM() {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		return a.Data, a.Name(), ct
	}

	rate, ch := a.SampleRate, a.Channels
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if ch <= 0 {
		ch = DefaultChannels
	}
	return WAV(a.Data, rate, ch), "audio.wav", "audio/wav"
}

// WAV prefixes 16-bit little-endian PCM with a RIFF/WAVE header.
func WAV(pcm []byte, sampleRate, channels int) []byte {
	const bits = 16
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(pcm)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * bits / 8),
		BlockAlign:    uint16(channels * bits / 8),
		BitsPerSample: bits,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}

	var buf bytes.Buffer
	buf.Grow(binary.Size(h) + len(pcm))
	_ = binary.Write(&buf, binary.LittleEndian, h)
	buf.Write(pcm)
	return buf.Bytes()
}

package stt

import (
	"encoding/binary"
	"testing"
)

func TestWAV_Header(t *testing.T) {
	t.Parallel()

	wav := WAV(make([]byte, 100), 48000, 2)
	if len(wav) != 144 {
		t.Fatalf("len = %d, want 44-byte header + 100", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[12:16]) != "fmt " || string(wav[36:40]) != "data" {
		t.Fatalf("chunk markers wrong: %q", wav[:40])
	}

	le := binary.LittleEndian
	fields := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(wav[4:8]), 136},
		{"format", uint32(le.Uint16(wav[20:22])), 1},
		{"channels", uint32(le.Uint16(wav[22:24])), 2},
		{"sample rate", le.Uint32(wav[24:28]), 48000},
		{"byte rate", le.Uint32(wav[28:32]), 48000 * 2 * 2},
		{"block align", uint32(le.Uint16(wav[32:34])), 4},
		{"bits", uint32(le.Uint16(wav[34:36])), 16},
		{"data size", le.Uint32(wav[40:44]), 100},
	}
	for _, f := range fields {
		if f.got != f.want {
			t.Errorf("%s = %d, want %d", f.name, f.got, f.want)
		}
	}
}

func TestAudio_File(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		audio    Audio
		wantName string
		wantType string
		wantLen  int
	}{
		{"webm upload", Audio{Data: []byte("webm"), Filename: "uploads/answer.webm", ContentType: "audio/webm"}, "answer.webm", "audio/webm", 4},
		{"untyped upload", Audio{Data: []byte("abc")}, "audio.wav", "application/octet-stream", 3},
		{"pcm defaults", Audio{Data: make([]byte, 32), ContentType: ContentTypePCM16}, "audio.wav", "audio/wav", 76},
	}
	for _, tc := range tests {
		data, name, ct := tc.audio.File()
		if name != tc.wantName || ct != tc.wantType || len(data) != tc.wantLen {
			t.Errorf("%s: File() = (%d bytes, %q, %q), want (%d, %q, %q)",
				tc.name, len(data), name, ct, tc.wantLen, tc.wantName, tc.wantType)
		}
	}

	data, _, _ := Audio{Data: make([]byte, 8), ContentType: ContentTypePCM16}.File()
	if got := binary.LittleEndian.Uint32(data[24:28]); got != DefaultSampleRate {
		t.Errorf("default sample rate = %d", got)
	}
}

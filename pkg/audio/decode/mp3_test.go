// ABOUTME: Tests for MP3 decoder
// ABOUTME: Decodes synthetic silent frames and checks invalid stream handling
package decode

import (
	"errors"
	"testing"

	"github.com/splicedd/splicedd-go/pkg/splice"
)

// silentMP3 builds MPEG-1 Layer III frames (128kbps, 44.1kHz, stereo) with
// zeroed side info, which decode to silence.
func silentMP3(frames int) []byte {
	const frameSize = 417
	data := make([]byte, 0, frames*frameSize)
	for i := 0; i < frames; i++ {
		frame := make([]byte, frameSize)
		frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0x00
		data = append(data, frame...)
	}
	return data
}

func TestNewMP3(t *testing.T) {
	decoder := NewMP3()
	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestDecodeMP3Silence(t *testing.T) {
	buf, err := DecodeMP3(silentMP3(8))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if buf.Format.Codec != "mp3" {
		t.Errorf("expected codec mp3, got %s", buf.Format.Codec)
	}
	if buf.Format.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", buf.Format.SampleRate)
	}
	if buf.Format.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", buf.Format.Channels)
	}
	if len(buf.Samples) == 0 {
		t.Fatal("expected decoded samples")
	}
	for i, s := range buf.Samples {
		if s != 0 {
			t.Fatalf("expected silence, sample %d is %d", i, s)
		}
	}
}

func TestDecodeDescrambledPreview(t *testing.T) {
	var key [splice.KeySize]byte
	for i := range key {
		key[i] = byte(0x40 + i)
	}
	scrambled := splice.Encode(silentMP3(4), key)

	plain, err := splice.Decode(scrambled)
	if err != nil {
		t.Fatalf("descramble failed: %v", err)
	}

	decoder := NewMP3()
	buf, err := decoder.Decode(plain)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Duration() <= 0 {
		t.Errorf("expected positive duration, got %v", buf.Duration())
	}
}

func TestProbe(t *testing.T) {
	format, err := Probe(silentMP3(2))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if format.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", format.SampleRate)
	}
	if format.BitDepth != 16 {
		t.Errorf("expected bit depth 16, got %d", format.BitDepth)
	}
}

func TestDecodeMP3Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"zeros", make([]byte, 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := DecodeMP3(tt.data)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if buf != nil {
				t.Error("expected nil buffer on error")
			}
			if !errors.Is(err, ErrInvalidMP3) {
				t.Errorf("expected ErrInvalidMP3, got %v", err)
			}

			if _, err := Probe(tt.data); !errors.Is(err, ErrInvalidMP3) {
				t.Errorf("expected Probe to return ErrInvalidMP3, got %v", err)
			}
		})
	}
}

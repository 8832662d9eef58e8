// ABOUTME: Tests for the splice preview codec
// ABOUTME: Covers header parsing, size byte order, key cycling and bounds checks
package splice

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testKey = [KeySize]byte{
	0x3a, 0x91, 0x07, 0xc4, 0x5e, 0x12, 0xee, 0x80, 0x2b,
	0x6f, 0xd3, 0x19, 0xa5, 0x44, 0x70, 0x0c, 0xb8, 0x61,
}

// buildScrambled assembles a buffer by hand so the tests do not depend on Encode
func buildScrambled(sizeField [8]byte, key [KeySize]byte, payload []byte) []byte {
	data := make([]byte, 0, HeaderSize+len(payload))
	data = append(data, 0x00, 0x00)
	data = append(data, sizeField[:]...)
	data = append(data, key[:]...)
	return append(data, payload...)
}

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 3)
	}
	return b
}

func TestDecodeFixture(t *testing.T) {
	scrambled, err := os.ReadFile(filepath.Join("testdata", "preview.scrambled"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	expected, err := os.ReadFile(filepath.Join("testdata", "preview.mp3"))
	if err != nil {
		t.Fatalf("failed to read expected output: %v", err)
	}

	got, err := Decode(scrambled)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !bytes.Equal(got, expected) {
		t.Fatalf("decoded fixture differs from reference MP3 (got %d bytes, expected %d)", len(got), len(expected))
	}

	if !bytes.HasPrefix(got, []byte("ID3")) {
		t.Error("expected decoded fixture to start with an ID3 tag")
	}
}

func TestDecodeSizeFieldByteOrder(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	var key [KeySize]byte
	for i := range key {
		key[i] = 0x2a
	}
	data := buildScrambled([8]byte{10, 0, 0, 0, 0, 0, 0, 0}, key, payload)

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(out) != 10 {
		t.Errorf("expected 10 bytes, got %d", len(out))
	}
}

func TestParseHeader(t *testing.T) {
	data := buildScrambled([8]byte{0x34, 0x12, 0, 0, 0, 0, 0, 0}, testKey, nil)
	data[0], data[1] = 0xAB, 0xCD

	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	expected := Header{Marker: [2]byte{0xAB, 0xCD}, Size: 0x1234, Key: testKey}
	if diff := cmp.Diff(expected, h); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSizeMultiByte(t *testing.T) {
	tests := []struct {
		name     string
		field    [8]byte
		expected uint64
	}{
		{"zero", [8]byte{}, 0},
		{"low byte", [8]byte{0xFF}, 255},
		{"second byte", [8]byte{0x00, 0x01}, 256},
		{"mixed", [8]byte{0x0d, 0x12, 0x03}, 0x03120d},
		{"high byte", [8]byte{0, 0, 0, 0, 0, 0, 0, 0x01}, 1 << 56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := DecodeSize(buildScrambled(tt.field, testKey, nil))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if size != tt.expected {
				t.Errorf("expected size %d, got %d", tt.expected, size)
			}
		})
	}
}

func TestDecodeXORsWithCyclicKey(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"single byte", 1},
		{"one short of a block", KeySize - 1},
		{"exact block", KeySize},
		{"one past a block", KeySize + 1},
		{"two blocks", 2 * KeySize},
		{"uneven", 5*KeySize + 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain := sequence(tt.n)
			payload := make([]byte, tt.n)
			for i := range plain {
				payload[i] = plain[i] ^ testKey[i%KeySize]
			}
			var field [8]byte
			field[0] = byte(tt.n)

			out, err := Decode(buildScrambled(field, testKey, payload))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if diff := cmp.Diff(plain, out); diff != "" {
				t.Errorf("decoded payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	plain := sequence(20)
	data := append(Encode(plain, testKey), 0xEE, 0xEE, 0xEE)

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if diff := cmp.Diff(plain, out); diff != "" {
		t.Errorf("trailing bytes leaked into output (-want +got):\n%s", diff)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	data := Encode(sequence(100), testKey)
	original := append([]byte(nil), data...)

	first, err := Decode(data)
	if err != nil {
		t.Fatalf("first decode failed: %v", err)
	}
	second, err := Decode(data)
	if err != nil {
		t.Fatalf("second decode failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("expected repeated decodes to be identical")
	}
	if !bytes.Equal(data, original) {
		t.Error("decode modified its input")
	}

	first[0] ^= 0xFF
	if data[HeaderSize] != original[HeaderSize] {
		t.Error("output aliases the input buffer")
	}
}

func TestDecodeMalformed(t *testing.T) {
	oversized := buildScrambled([8]byte{0xE8, 0x03}, testKey, []byte{1, 2, 3, 4, 5})

	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"one short of header", make([]byte, HeaderSize-1)},
		{"header only", make([]byte, HeaderSize)},
		{"zero size with payload", buildScrambled([8]byte{}, testKey, []byte{1, 2, 3})},
		{"size exceeds buffer", oversized},
		{"size one past end", buildScrambled([8]byte{6}, testKey, []byte{1, 2, 3, 4, 5})},
		{"max size field", buildScrambled([8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, testKey, []byte{1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decode(tt.data)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if out != nil {
				t.Errorf("expected nil output on error, got %d bytes", len(out))
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("expected ErrMalformedInput, got %v", err)
			}
			var mErr *MalformedInputError
			if !errors.As(err, &mErr) {
				t.Fatalf("expected *MalformedInputError, got %T", err)
			}
			if mErr.Len != len(tt.data) {
				t.Errorf("expected Len %d, got %d", len(tt.data), mErr.Len)
			}
		})
	}
}

func TestDecodeSizeExceedsBufferReportsSize(t *testing.T) {
	data := buildScrambled([8]byte{0xE8, 0x03}, testKey, []byte{1, 2, 3, 4, 5})

	_, err := Decode(data)
	var mErr *MalformedInputError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *MalformedInputError, got %v", err)
	}
	if mErr.Size != 1000 {
		t.Errorf("expected Size 1000, got %d", mErr.Size)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, n := range []int{1, KeySize - 1, KeySize, KeySize + 1, 3 * KeySize, 1000} {
		plain := sequence(n)
		scrambled := Encode(plain, testKey)

		if len(scrambled) != HeaderSize+n {
			t.Fatalf("n=%d: expected %d scrambled bytes, got %d", n, HeaderSize+n, len(scrambled))
		}

		out, err := Decode(scrambled)
		if err != nil {
			t.Fatalf("n=%d: decode failed: %v", n, err)
		}
		if !bytes.Equal(out, plain) {
			t.Errorf("n=%d: round trip mismatch", n)
		}
	}
}

func TestIsScrambled(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("testdata", "preview.scrambled"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	plain, err := os.ReadFile(filepath.Join("testdata", "preview.mp3"))
	if err != nil {
		t.Fatalf("failed to read expected output: %v", err)
	}

	tests := []struct {
		name     string
		data     []byte
		expected bool
	}{
		{"fixture", fixture, true},
		{"encoded", Encode(sequence(40), testKey), true},
		{"plain id3", plain, false},
		{"plain frame sync", append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 60)...), false},
		{"too short", []byte{1, 2, 3}, false},
		{"size exceeds buffer", buildScrambled([8]byte{0xE8, 0x03}, testKey, []byte{1}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsScrambled(tt.data); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMalformedInputErrorMessage(t *testing.T) {
	_, err := Decode(make([]byte, 27))
	if err == nil {
		t.Fatal("expected error")
	}
	expected := "malformed splice audio: shorter than 28-byte header (buffer 27 bytes, size field 0)"
	if err.Error() != expected {
		t.Errorf("expected error %q, got %q", expected, err.Error())
	}
}

// ABOUTME: Splice preview codec
// ABOUTME: Parses the 28-byte control header and reverses the keyed XOR transform
package splice

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// HeaderSize is the fixed size of the control header preceding the payload
	HeaderSize = 28

	// KeySize is the length of the key block and of one transform block
	KeySize = 18

	sizeOffset = 2
	keyOffset  = 10
)

// ErrMalformedInput is matched by every error Decode returns
var ErrMalformedInput = errors.New("malformed splice audio")

// MalformedInputError reports a header inconsistent with the buffer it came from
type MalformedInputError struct {
	Reason string
	Len    int    // length of the scrambled buffer
	Size   uint64 // decoded size field, zero if the header was unreadable
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed splice audio: %s (buffer %d bytes, size field %d)", e.Reason, e.Len, e.Size)
}

// Is makes errors.Is(err, ErrMalformedInput) hold for every MalformedInputError
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// Header is the control header at the start of a scrambled buffer
type Header struct {
	Marker [2]byte
	Size   uint64
	Key    [KeySize]byte
}

// ParseHeader reads the control header without validating the payload
func ParseHeader(scrambled []byte) (Header, error) {
	var h Header
	if len(scrambled) < HeaderSize {
		return h, &MalformedInputError{
			Reason: fmt.Sprintf("shorter than %d-byte header", HeaderSize),
			Len:    len(scrambled),
		}
	}

	copy(h.Marker[:], scrambled[:sizeOffset])
	// First byte is least significant: [10 0 0 0 0 0 0 0] is 10
	h.Size = binary.LittleEndian.Uint64(scrambled[sizeOffset:keyOffset])
	copy(h.Key[:], scrambled[keyOffset:HeaderSize])
	return h, nil
}

// DecodeSize returns the payload length stored in the header
func DecodeSize(scrambled []byte) (uint64, error) {
	h, err := ParseHeader(scrambled)
	if err != nil {
		return 0, err
	}
	return h.Size, nil
}

// Decode converts a scrambled preview buffer into a plain MP3 stream.
// The result is exactly Header.Size bytes long and never aliases scrambled.
func Decode(scrambled []byte) ([]byte, error) {
	h, err := ParseHeader(scrambled)
	if err != nil {
		return nil, err
	}

	if h.Size == 0 {
		return nil, &MalformedInputError{Reason: "zero payload size", Len: len(scrambled)}
	}

	// Compare against the available bytes so a huge size field cannot overflow
	if h.Size > uint64(len(scrambled)-HeaderSize) {
		return nil, &MalformedInputError{
			Reason: fmt.Sprintf("payload needs %d bytes, %d available", h.Size, len(scrambled)-HeaderSize),
			Len:    len(scrambled),
			Size:   h.Size,
		}
	}

	payload := scrambled[HeaderSize : HeaderSize+int(h.Size)]
	out := make([]byte, len(payload))
	xorKey(out, payload, &h.Key)
	return out, nil
}

// Encode scrambles plain audio with key, producing a buffer Decode accepts.
// The marker bytes are left zero.
func Encode(plain []byte, key [KeySize]byte) []byte {
	out := make([]byte, HeaderSize+len(plain))
	binary.LittleEndian.PutUint64(out[sizeOffset:keyOffset], uint64(len(plain)))
	copy(out[keyOffset:HeaderSize], key[:])
	xorKey(out[HeaderSize:], plain, &key)
	return out
}

// IsScrambled reports whether data carries a consistent control header and is
// not already a plain MP3 stream (ID3 tag or MPEG frame sync at offset 0).
func IsScrambled(data []byte) bool {
	if looksLikeMP3(data) {
		return false
	}
	size, err := DecodeSize(data)
	if err != nil {
		return false
	}
	return size > 0 && size <= uint64(len(data)-HeaderSize)
}

func looksLikeMP3(data []byte) bool {
	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// xorKey writes src ^ key[i%KeySize] into dst, one key block at a time
func xorKey(dst, src []byte, key *[KeySize]byte) {
	for off := 0; off < len(src); off += KeySize {
		end := off + KeySize
		if end > len(src) {
			end = len(src)
		}
		for j := range src[off:end] {
			dst[off+j] = src[off+j] ^ key[j]
		}
	}
}

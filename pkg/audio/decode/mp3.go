// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes descrambled preview MP3 to 16-bit PCM using go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/splicedd/splicedd-go/pkg/audio"
)

// go-mp3 always produces interleaved 16-bit little-endian stereo
const (
	mp3Channels = 2
	mp3BitDepth = 16
)

// MP3Decoder decodes whole MP3 buffers
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts MP3 bytes to PCM samples
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	return DecodeMP3(data)
}

// DecodeMP3 decodes a complete MP3 stream held in memory
func DecodeMP3(data []byte) (*audio.Buffer, error) {
	dec, format, err := open(data)
	if err != nil {
		return nil, err
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMP3, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: no audio frames", ErrInvalidMP3)
	}

	// Convert bytes to int16 (2 bytes per sample)
	numSamples := len(pcm) / 2
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	return &audio.Buffer{Format: format, Samples: samples}, nil
}

// Probe checks that data starts a decodable MP3 stream and returns its format
// without decoding the whole buffer.
func Probe(data []byte) (audio.Format, error) {
	_, format, err := open(data)
	return format, err
}

func open(data []byte) (*mp3.Decoder, audio.Format, error) {
	if len(data) == 0 {
		return nil, audio.Format{}, fmt.Errorf("%w: empty buffer", ErrInvalidMP3)
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("%w: %w", ErrInvalidMP3, err)
	}

	format := audio.Format{
		Codec:      "mp3",
		SampleRate: dec.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   mp3BitDepth,
	}
	return dec, format, nil
}

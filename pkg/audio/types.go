// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and decoded PCM buffers
package audio

import "time"

// Format describes a decoded audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Buffer holds interleaved 16-bit PCM decoded from a preview
type Buffer struct {
	Format  Format
	Samples []int16
}

// Frames returns the number of sample frames (samples per channel)
func (b *Buffer) Frames() int {
	if b.Format.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback length of the buffer
func (b *Buffer) Duration() time.Duration {
	if b.Format.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// ScaleSample applies a 0-100 volume to one sample with clipping protection
func ScaleSample(sample int16, volume int) int16 {
	scaled := int32(sample) * int32(volume) / 100
	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}

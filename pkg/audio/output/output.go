// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for preview playback backends
package output

import "github.com/splicedd/splicedd-go/pkg/audio"

// Output represents an audio output device
type Output interface {
	// Open initializes the output device for the given format
	Open(format audio.Format) error

	// Write outputs interleaved 16-bit samples (blocks until written)
	Write(samples []int16) error

	// Close releases output resources
	Close() error
}

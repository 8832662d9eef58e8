// ABOUTME: Oto-based audio output implementation
// ABOUTME: Handles PCM playback with software volume control using oto library
package output

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/splicedd/splicedd-go/pkg/audio"
)

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	format     audio.Format
	volume     int
	muted      bool
	ready      bool
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{
		volume: 100,
	}
}

var _ Output = (*Oto)(nil)

// Open initializes the output device
func (o *Oto) Open(format audio.Format) error {
	if format.BitDepth != 0 && format.BitDepth != 16 {
		log.Printf("Warning: oto only supports 16-bit output, ignoring requested bitDepth=%d", format.BitDepth)
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return fmt.Errorf("invalid output format: %dHz %dch", format.SampleRate, format.Channels)
	}

	// oto allows one context per process
	if o.otoCtx != nil {
		if o.format.SampleRate != format.SampleRate || o.format.Channels != format.Channels {
			log.Printf("Warning: format change detected (%dHz %dch -> %dHz %dch) but oto doesn't support reinitialization. Continuing with existing context.",
				o.format.SampleRate, o.format.Channels, format.SampleRate, format.Channels)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.format = format

	// Create pipe for continuous streaming
	o.pipeReader, o.pipeWriter = io.Pipe()

	// Create persistent player that reads from the pipe
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels", format.SampleRate, format.Channels)

	return nil
}

// Write outputs audio samples (blocks until written)
func (o *Oto) Write(samples []int16) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	output := encodeSamples(samples, o.effectiveVolume())

	// Write to pipe (which feeds the persistent player)
	if _, err := o.pipeWriter.Write(output); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Drain ends the stream and waits until everything written has been played
func (o *Oto) Drain(ctx context.Context) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for o.player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
		o.ready = false
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.volume = volume
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.muted = muted
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	return o.muted
}

func (o *Oto) effectiveVolume() int {
	if o.muted {
		return 0
	}
	return o.volume
}

// encodeSamples applies volume and packs samples as little-endian bytes
func encodeSamples(samples []int16, volume int) []byte {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		if volume != 100 {
			sample = audio.ScaleSample(sample, volume)
		}
		binary.LittleEndian.PutUint16(output[i*2:], uint16(sample))
	}
	return output
}

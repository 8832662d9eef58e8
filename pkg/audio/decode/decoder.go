// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for decoders that turn descrambled previews into PCM
package decode

import (
	"errors"

	"github.com/splicedd/splicedd-go/pkg/audio"
)

// ErrInvalidMP3 means a buffer could not be decoded as MP3. After a successful
// descramble it points at a transform bug rather than bad input.
var ErrInvalidMP3 = errors.New("invalid mp3 stream")

// Decoder decodes an in-memory audio stream to PCM
type Decoder interface {
	// Decode converts encoded audio data to PCM samples
	Decode(data []byte) (*audio.Buffer, error)
}

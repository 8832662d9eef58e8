// ABOUTME: Preview loader tying fetch, descramble and cache together
// ABOUTME: Deduplicates concurrent loads of one asset and supports fetch-ahead
package preview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/splicedd/splicedd-go/internal/fetch"
	"github.com/splicedd/splicedd-go/pkg/audio/decode"
	"github.com/splicedd/splicedd-go/pkg/splice"
	"golang.org/x/sync/singleflight"
)

// ErrNoPreview is returned for assets without a preview_mp3 file
var ErrNoPreview = errors.New("asset has no preview")

// Config configures a Loader
type Config struct {
	Fetcher fetch.Fetcher
	Cache   *Cache // nil disables caching

	// Verify probes the descrambled bytes with the MP3 decoder before caching
	Verify bool
}

// Loader turns assets into playable MP3 bytes
type Loader struct {
	fetcher fetch.Fetcher
	cache   *Cache
	verify  bool
	group   singleflight.Group

	// Keys with a prefetch running or finished; failed ones are removed
	prefetched sync.Map
}

// NewLoader creates a loader
func NewLoader(config Config) *Loader {
	return &Loader{
		fetcher: config.Fetcher,
		cache:   config.Cache,
		verify:  config.Verify,
	}
}

// Prefetch starts loading asset in the background so a later Load finds it
// in flight or cached. Each asset is prefetched at most once unless the
// attempt fails. Failures are logged; Load will try again.
func (l *Loader) Prefetch(ctx context.Context, asset Asset) {
	key := asset.key()
	if _, started := l.prefetched.LoadOrStore(key, struct{}{}); started {
		return
	}

	go func() {
		if _, err := l.Load(ctx, asset); err != nil {
			l.prefetched.Delete(key)
			log.Printf("Prefetch of %s failed: %v", key, err)
		}
	}()
}

// Load returns the descrambled preview for asset. Errors wrap
// splice.ErrMalformedInput for bad bytes, decode.ErrInvalidMP3 when
// verification rejects the output, or the fetcher's error otherwise.
func (l *Loader) Load(ctx context.Context, asset Asset) ([]byte, error) {
	file, ok := asset.PreviewFile()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPreview, asset.Name)
	}
	key := asset.key()

	if l.cache != nil {
		if data, ok := l.cache.Get(key); ok {
			return data, nil
		}
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		return l.load(ctx, key, file.URL)
	})
	if err != nil {
		return nil, err
	}

	// Shared callers each get their own copy
	return append([]byte(nil), v.([]byte)...), nil
}

func (l *Loader) load(ctx context.Context, key, url string) ([]byte, error) {
	scrambled, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch preview %s: %w", key, err)
	}

	var plain []byte
	if isPlainMP3(scrambled) {
		log.Printf("Preview %s is already plain MP3, skipping descramble", key)
		plain = scrambled
	} else {
		plain, err = splice.Decode(scrambled)
		if err != nil {
			return nil, fmt.Errorf("descramble preview %s: %w", key, err)
		}
	}

	if l.verify {
		if _, err := decode.Probe(plain); err != nil {
			return nil, fmt.Errorf("verify preview %s: %w", key, err)
		}
	}

	if l.cache != nil {
		if err := l.cache.Put(key, plain); err != nil {
			// Still usable, only the cache write failed
			log.Printf("Failed to cache preview %s: %v", key, err)
		}
	}

	return plain, nil
}

// isPlainMP3 reports whether data is an unscrambled MP3 the decoder accepts
func isPlainMP3(data []byte) bool {
	if splice.IsScrambled(data) {
		return false
	}
	_, err := decode.Probe(data)
	return err == nil
}

// ABOUTME: Cache for descrambled previews
// ABOUTME: Keeps decoded MP3 bytes in memory and on disk keyed by asset identity
package preview

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Cache stores descrambled previews so an asset is fetched and decoded once
type Cache struct {
	dir string

	mu  sync.RWMutex
	mem map[string][]byte
}

// NewCache creates a cache rooted at dir. An empty dir keeps entries in memory only.
func NewCache(dir string) (*Cache, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &Cache{
		dir: dir,
		mem: make(map[string][]byte),
	}, nil
}

// Path returns the on-disk location for key, or "" for a memory-only cache
func (c *Cache) Path(key string) string {
	if c.dir == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%x.mp3", hash[:8]))
}

// Get returns a copy of the cached preview for key
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	data, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return bytes.Clone(data), true
	}

	path := c.Path(key)
	if path == "" {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	log.Printf("Preview cache hit: %s", path)
	c.mu.Lock()
	c.mem[key] = data
	c.mu.Unlock()
	return bytes.Clone(data), true
}

// Put stores data under key
func (c *Cache) Put(key string, data []byte) error {
	stored := bytes.Clone(data)

	c.mu.Lock()
	c.mem[key] = stored
	c.mu.Unlock()

	path := c.Path(key)
	if path == "" {
		return nil
	}

	// Write to a temp file first so readers never see a partial preview
	tmp, err := os.CreateTemp(c.dir, ".preview-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(stored); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save preview: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save preview: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save preview: %w", err)
	}

	log.Printf("Preview cached: %s", path)
	return nil
}

// Cleanup drops all entries and removes the cache directory
func (c *Cache) Cleanup() error {
	c.mu.Lock()
	c.mem = make(map[string][]byte)
	c.mu.Unlock()

	if c.dir == "" {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Package cache keeps extracted snapshots on disk so unchanged sources are
// not parsed twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/everstacklabs/apidiff/internal/model"
	"github.com/everstacklabs/apidiff/internal/snapshot"
)

// FileCache stores zstd-compressed snapshot documents with a TTL.
type FileCache struct {
	dir string
	ttl time.Duration
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// New creates a cache rooted at dir.
func New(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, enc: enc, dec: dec}, nil
}

// Key builds a cache key from a source identity and the extraction settings.
func Key(sourceID, language string, ignore []string) string {
	return sourceID + "\x00" + language + "\x00" + strings.Join(ignore, "\x00")
}

// Get returns the cached snapshot for key if present and not expired.
// Unreadable entries are removed.
func (c *FileCache) Get(key string) (*model.Snapshot, bool) {
	path := c.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		slog.Debug("dropping corrupt cache entry", "path", path, "error", err)
		os.Remove(path)
		return nil, false
	}
	s, err := snapshot.Decode(data)
	if err != nil {
		slog.Debug("dropping corrupt cache entry", "path", path, "error", err)
		os.Remove(path)
		return nil, false
	}
	return s, true
}

// Set stores s under key.
func (c *FileCache) Set(key string, s *model.Snapshot) error {
	data, err := snapshot.Encode(s)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(c.enc.EncodeAll(data, nil)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// Close releases the encoder and decoder.
func (c *FileCache) Close() {
	c.dec.Close()
	c.enc.Close()
}

func (c *FileCache) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:])+".yaml.zst")
}

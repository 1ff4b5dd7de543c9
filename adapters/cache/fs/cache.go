package cachefs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-proposal/proposal"
)

// Cache stores rendered artifacts on disk. Keys are hashed into a two-level
// directory layout so arbitrary key text never reaches the filesystem.
type Cache struct {
	Root string
	TTL  time.Duration
	Now  func() time.Time
}

// NewCache creates a filesystem cache rooted at root. A zero ttl never expires.
func NewCache(root string, ttl time.Duration) *Cache {
	return &Cache{Root: root, TTL: ttl, Now: time.Now}
}

type entryMeta struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get returns the cached bytes for key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := c.check(ctx, key); err != nil {
		return nil, false, err
	}
	pathOnDisk := c.path(key)

	if meta, ok := c.readMeta(pathOnDisk); ok && !meta.ExpiresAt.IsZero() && c.now().After(meta.ExpiresAt) {
		_ = c.remove(pathOnDisk)
		return nil, false, nil
	}

	data, err := os.ReadFile(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set writes data under key, replacing any previous entry atomically.
func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.check(ctx, key); err != nil {
		return err
	}
	pathOnDisk := c.path(key)
	if err := os.MkdirAll(filepath.Dir(pathOnDisk), 0o755); err != nil {
		return err
	}

	meta := entryMeta{Key: key, Size: int64(len(data)), CreatedAt: c.now()}
	if c.TTL > 0 {
		meta.ExpiresAt = meta.CreatedAt.Add(c.TTL)
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := writeAtomic(pathOnDisk+".meta.json", payload); err != nil {
		return err
	}
	return writeAtomic(pathOnDisk, data)
}

// Delete removes key from the cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.check(ctx, key); err != nil {
		return err
	}
	return c.remove(c.path(key))
}

func (c *Cache) check(ctx context.Context, key string) error {
	if c == nil {
		return proposal.NewError(proposal.KindInternal, "cache is nil", nil)
	}
	if c.Root == "" {
		return proposal.NewError(proposal.KindValidation, "cache root is required", nil)
	}
	if key == "" {
		return proposal.NewError(proposal.KindValidation, "cache key is required", nil)
	}
	return ctx.Err()
}

func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.Root, name[:2], name)
}

func (c *Cache) readMeta(pathOnDisk string) (entryMeta, bool) {
	data, err := os.ReadFile(pathOnDisk + ".meta.json")
	if err != nil {
		return entryMeta{}, false
	}
	var meta entryMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return entryMeta{}, false
	}
	return meta, true
}

func (c *Cache) remove(pathOnDisk string) error {
	if err := os.Remove(pathOnDisk); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(pathOnDisk + ".meta.json"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".cache-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

var _ proposal.ArtifactCache = (*Cache)(nil)

package proposal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps proposals in memory (test/dev only).
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
	now  func() time.Time
}

// NewMemoryStore creates an in-memory proposal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte), now: time.Now}
}

// Get returns a decoded copy of the stored proposal.
func (s *MemoryStore) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return Document{}, NewError(KindNotFound, fmt.Sprintf("proposal %q not found", id), nil)
	}
	doc, err := DecodeStoredDocument(data)
	if err != nil {
		return Document{}, err
	}
	doc.ID = id
	return doc, nil
}

// Put stores doc under doc.ID.
func (s *MemoryStore) Put(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" {
		return NewError(KindValidation, "proposal id is required", nil)
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[doc.ID] = data
	s.mu.Unlock()
	return nil
}

// PutRaw stores an already encoded payload.
func (s *MemoryStore) PutRaw(id string, data []byte) {
	s.mu.Lock()
	s.docs[id] = append([]byte(nil), data...)
	s.mu.Unlock()
}

// List returns the stored identifiers in lexical order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

// MemoryCache keeps rendered artifacts in memory with an optional TTL.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// NewMemoryCache creates an in-memory artifact cache. A zero ttl never expires.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && c.now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.data...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, data []byte) error {
	_ = ctx
	entry := cacheEntry{data: append([]byte(nil), data...)}
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

var (
	_ DocumentStore  = (*MemoryStore)(nil)
	_ DocumentWriter = (*MemoryStore)(nil)
	_ ArtifactCache  = (*MemoryCache)(nil)
)

package doubletags

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CachedPartialStore wraps a PartialStore and caches Get results, including
// "not found" answers. Writes through the wrapper invalidate the entry;
// writes that bypass it are seen once the entry expires.
type CachedPartialStore struct {
	store  PartialStore
	config CacheConfig

	mu      sync.Mutex
	entries map[string]*cacheEntry
	version uint64 // Bumped by every invalidation
	closed  bool
}

// CacheConfig configures a CachedPartialStore.
type CacheConfig struct {
	// TTL is how long a cached source stays valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries bounds the cache; the least recently read entry is evicted.
	// Default: 1000.
	MaxEntries int

	// NegativeTTL is how long a "not found" answer is cached.
	// Zero disables negative caching.
	NegativeTTL time.Duration
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:         CacheDefaultTTL,
		MaxEntries:  CacheDefaultMaxEntries,
		NegativeTTL: CacheDefaultNegativeTTL,
	}
}

// CacheStats reports the cache contents.
type CacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
}

type cacheEntry struct {
	source   string
	notFound bool
	cachedAt time.Time
	readAt   time.Time
}

// NewCachedPartialStore wraps store. Zero TTL and MaxEntries take defaults.
func NewCachedPartialStore(store PartialStore, config CacheConfig) *CachedPartialStore {
	if config.TTL == 0 {
		config.TTL = CacheDefaultTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = CacheDefaultMaxEntries
	}

	return &CachedPartialStore{
		store:   store,
		config:  config,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns a partial from the cache or, on a miss, from the wrapped store.
func (s *CachedPartialStore) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", NewStoreClosedError()
	}
	if entry, ok := s.entries[name]; ok && s.valid(entry) {
		entry.readAt = time.Now()
		s.mu.Unlock()
		if entry.notFound {
			return "", NewPartialNotFoundError(name)
		}
		return entry.source, nil
	}
	version := s.version
	s.mu.Unlock()

	source, err := s.store.Get(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", NewStoreClosedError()
	}
	// A write during the read may have made source stale; serve it once
	// without caching it.
	if s.version != version {
		return source, err
	}

	switch {
	case err == nil:
		s.add(name, source, false)
	case errors.Is(err, ErrPartialNotFound) && s.config.NegativeTTL > 0:
		s.add(name, "", true)
	}
	return source, err
}

// Save writes through to the wrapped store and drops the cached entry.
func (s *CachedPartialStore) Save(ctx context.Context, name, source string) error {
	if err := s.store.Save(ctx, name, source); err != nil {
		return err
	}
	s.Invalidate(name)
	return nil
}

// Delete removes the partial from the wrapped store and the cache.
func (s *CachedPartialStore) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.Invalidate(name)
	return nil
}

// List is not cached.
func (s *CachedPartialStore) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Close drops the cache and closes the wrapped store.
func (s *CachedPartialStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.entries = nil
	s.mu.Unlock()

	return s.store.Close()
}

// Invalidate removes one partial from the cache.
func (s *CachedPartialStore) Invalidate(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.version++
	s.mu.Unlock()
}

// InvalidateAll clears the cache.
func (s *CachedPartialStore) InvalidateAll() {
	s.mu.Lock()
	if !s.closed {
		s.entries = make(map[string]*cacheEntry)
	}
	s.version++
	s.mu.Unlock()
}

// Stats returns cache statistics.
func (s *CachedPartialStore) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := CacheStats{Entries: len(s.entries)}
	for _, entry := range s.entries {
		if !s.valid(entry) {
			continue
		}
		if entry.notFound {
			stats.NegativeEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

// Caller must hold mu.
func (s *CachedPartialStore) valid(entry *cacheEntry) bool {
	ttl := s.config.TTL
	if entry.notFound {
		ttl = s.config.NegativeTTL
	}
	return time.Since(entry.cachedAt) < ttl
}

// Caller must hold mu.
func (s *CachedPartialStore) add(name, source string, notFound bool) {
	if _, exists := s.entries[name]; !exists && len(s.entries) >= s.config.MaxEntries {
		s.evictLeastRecentlyRead()
	}

	now := time.Now()
	s.entries[name] = &cacheEntry{
		source:   source,
		notFound: notFound,
		cachedAt: now,
		readAt:   now,
	}
}

// Caller must hold mu.
func (s *CachedPartialStore) evictLeastRecentlyRead() {
	var (
		oldestName string
		oldest     *cacheEntry
	)
	for name, entry := range s.entries {
		if oldest == nil || entry.readAt.Before(oldest.readAt) {
			oldestName, oldest = name, entry
		}
	}
	if oldest != nil {
		delete(s.entries, oldestName)
	}
}

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// defaultMemoryTTL applies when Set is called with expiration <= 0.
const defaultMemoryTTL = 7 * 24 * time.Hour

type memEntry struct {
	value    interface{}
	expireAt time.Time
	lastUsed time.Time
}

func (e *memEntry) expired(now time.Time) bool {
	return now.After(e.expireAt)
}

// MemoryCache implements Service backed by a map, with LRU eviction when the
// entry cap is reached and a background sweep for expired entries.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
	maxSize int
	sweep   *time.Ticker
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries: make(map[string]*memEntry),
		maxSize: cfg.MaxSize,
		sweep:   time.NewTicker(cfg.CleanupInterval),
	}
	go mc.sweepLoop()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, ok := mc.entries[key]; !ok && len(mc.entries) >= mc.maxSize {
		mc.evictOldestLocked()
	}

	now := time.Now()
	mc.entries[key] = &memEntry{
		value:    value,
		expireAt: now.Add(expiration),
		lastUsed: now,
	}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	now := time.Now()
	if !ok || e.expired(now) {
		if ok {
			delete(mc.entries, key)
		}
		return ErrCacheMiss
	}
	e.lastUsed = now

	// string dest gets a direct assignment; everything else goes through
	// an interface pointer
	if sp, ok := dest.(*string); ok {
		if s, ok := e.value.(string); ok {
			*sp = s
			return nil
		}
	}
	*dest.(*interface{}) = e.value
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.entries, key)
	}
	return nil
}

// DeleteByPattern drops everything; the map has no key index to match
// patterns against cheaply.
func (mc *MemoryCache) DeleteByPattern(_ context.Context, _ string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries = make(map[string]*memEntry)
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	now := time.Now()
	for _, key := range keys {
		if e, ok := mc.entries[key]; ok && !e.expired(now) {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) Increment(_ context.Context, key string) (int64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	e, ok := mc.entries[key]
	if !ok || e.expired(now) {
		mc.entries[key] = &memEntry{value: int64(1), expireAt: now.Add(defaultMemoryTTL), lastUsed: now}
		return 1, nil
	}

	n, ok := e.value.(int64)
	if !ok {
		return 0, fmt.Errorf("value is not int64")
	}
	e.value = n + 1
	e.lastUsed = now
	return n + 1, nil
}

func (mc *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	if !ok {
		return false, nil
	}
	e.expireAt = time.Now().Add(expiration)
	return true, nil
}

func (mc *MemoryCache) MSet(ctx context.Context, values map[string]interface{}, expiration time.Duration) error {
	for key, value := range values {
		if err := mc.Set(ctx, key, value, expiration); err != nil {
			return err
		}
	}
	return nil
}

func (mc *MemoryCache) MGet(_ context.Context, keys ...string) (map[string]string, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make(map[string]string)
	now := time.Now()
	for _, key := range keys {
		e, ok := mc.entries[key]
		if !ok || e.expired(now) {
			continue
		}
		if s, ok := e.value.(string); ok {
			out[key] = s
		}
	}
	return out, nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	if e, ok := mc.entries[key]; ok && !e.expired(now) {
		return false, nil
	}
	mc.entries[key] = &memEntry{value: "locked", expireAt: now.Add(ttl), lastUsed: now}
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

func (mc *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range mc.entries {
		if oldestKey == "" || e.lastUsed.Before(oldest) {
			oldest = e.lastUsed
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

func (mc *MemoryCache) sweepLoop() {
	for range mc.sweep.C {
		mc.mu.Lock()
		now := time.Now()
		for key, e := range mc.entries {
			if e.expired(now) {
				delete(mc.entries, key)
			}
		}
		mc.mu.Unlock()
	}
}

// Close stops the background sweep.
func (mc *MemoryCache) Close() error {
	if mc.sweep != nil {
		mc.sweep.Stop()
	}
	return nil
}

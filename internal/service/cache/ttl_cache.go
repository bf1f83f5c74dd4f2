package cache

import (
	"sync"
	"time"
)

type ttlEntry struct {
	val      any
	deadline time.Time
}

func (e ttlEntry) live(now time.Time) bool {
	return e.deadline.IsZero() || now.Before(e.deadline)
}

// TTLCache is a minimal expiring map used to memoize rendered console
// responses. Expired entries are dropped lazily on read.
type TTLCache struct {
	mu sync.RWMutex
	m  map[string]ttlEntry
}

func NewTTLCache() *TTLCache {
	return &TTLCache{m: make(map[string]ttlEntry)}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.live(time.Now()) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.val, true
}

// Set stores v for ttl; ttl <= 0 means no expiry.
func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = ttlEntry{val: v, deadline: deadline}
	c.mu.Unlock()
}

// GetBytes and SetBytes satisfy the BytesCache interface the plain console
// handlers cache rendered bodies through.

func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.Set(key, value, ttl)
	return nil
}
